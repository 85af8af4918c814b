package benchmarks

import (
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// dataBase is where benchmarks that touch memory keep their data.
const dataBase = 0x8000

// GetMicrobenchmarks returns the standard set of RV64IC microbenchmarks.
// Each benchmark targets a specific core characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		memoryStrided(),
		functionCalls(),
		branchTaken(),
		mulDiv(),
		loopSum(),
		compressedLoop(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a loop,
// a call-heavy program and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSum(),
		functionCalls(),
		branchTaken(),
	}
}

func mapData(size uint64) func(*emu.RegFile, *emu.Memory) {
	return func(regFile *emu.RegFile, memory *emu.Memory) {
		memory.MapRegion(dataBase, size)
		regFile.Set(insts.T1, dataBase)
	}
}

func arithmeticSequential() Benchmark {
	b := new(Builder)
	for i := 0; i < 4; i++ {
		for _, reg := range []insts.RegisterName{insts.A0, insts.A1, insts.A2, insts.A3, insts.A4} {
			b.Emit(EncodeADDI(reg, reg, 1))
		}
	}
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "arithmetic_sequential",
		Description:  "20 independent ADDIs across 5 registers - measures ALU throughput",
		Program:      b.Bytes(),
		ExpectedExit: 4,
	}
}

func dependencyChain() Benchmark {
	b := new(Builder)
	for i := 0; i < 20; i++ {
		b.Emit(EncodeADDI(insts.A0, insts.A0, 1))
	}
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "dependency_chain",
		Description:  "20 dependent ADDIs (a0 = a0 + 1) - measures back-to-back latency",
		Program:      b.Bytes(),
		ExpectedExit: 20,
	}
}

func memorySequential() Benchmark {
	b := new(Builder)
	for i := int32(0); i < 10; i++ {
		b.Emit(
			EncodeLI(insts.A0, i+1),
			EncodeSD(insts.A0, insts.T1, 8*i),
			EncodeLD(insts.A0, insts.T1, 8*i),
		)
	}
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "memory_sequential",
		Description:  "10 store/load pairs to sequential doublewords - measures store forwarding",
		Setup:        mapData(80),
		Program:      b.Bytes(),
		ExpectedExit: 10,
	}
}

func memoryStrided() Benchmark {
	b := new(Builder)
	for i := int32(0); i < 8; i++ {
		b.Emit(
			EncodeADDI(insts.A1, insts.A1, 1),
			EncodeSD(insts.A1, insts.T1, 64*i),
		)
	}
	b.Emit(EncodeLD(insts.A0, insts.T1, 64*7))
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "memory_strided",
		Description:  "8 stores one cache line apart - measures D-cache miss cost",
		Setup:        mapData(8 * 64),
		Program:      b.Bytes(),
		ExpectedExit: 8,
	}
}

func functionCalls() Benchmark {
	const calls = 5
	// li + calls + exit sequence, then the function body.
	const funcOffset = 4 * (1 + calls + 2)

	b := new(Builder)
	b.Emit(EncodeLI(insts.A0, 0))
	for i := 0; i < calls; i++ {
		b.Emit(EncodeJAL(insts.RA, funcOffset-b.Offset()))
	}
	b.Emit(exitSequence()...)
	b.Emit(
		EncodeADDI(insts.A0, insts.A0, 1),
		EncodeRET(),
	)

	return Benchmark{
		Name:         "function_calls",
		Description:  "5 JAL/RET pairs - measures call and return overhead",
		Program:      b.Bytes(),
		ExpectedExit: calls,
	}
}

func branchTaken() Benchmark {
	b := new(Builder)
	for i := 0; i < 5; i++ {
		b.Emit(
			EncodeBEQ(insts.Zero, insts.Zero, 8),
			EncodeADDI(insts.A0, insts.A0, 100), // skipped
			EncodeADDI(insts.A0, insts.A0, 1),
		)
	}
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "branch_taken",
		Description:  "5 always-taken forward branches - measures cold branch cost",
		Program:      b.Bytes(),
		ExpectedExit: 5,
	}
}

func mulDiv() Benchmark {
	b := new(Builder)
	b.Emit(
		EncodeLI(insts.A0, 6),
		EncodeLI(insts.A1, 7),
		EncodeMUL(insts.A0, insts.A0, insts.A1), // 42
		EncodeLI(insts.A2, 3),
		EncodeDIV(insts.A0, insts.A0, insts.A2), // 14
		EncodeREM(insts.A3, insts.A1, insts.A2), // 1
		EncodeADD(insts.A0, insts.A0, insts.A3),
	)
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "mul_div",
		Description:  "MUL, DIV and REM - measures long-latency M-extension ops",
		Program:      b.Bytes(),
		ExpectedExit: 15,
	}
}

func loopSum() Benchmark {
	b := new(Builder)
	b.Emit(
		EncodeLI(insts.A0, 0),
		EncodeLI(insts.T0, 100),
	)
	loop := b.Offset()
	b.Emit(
		EncodeADD(insts.A0, insts.A0, insts.T0),
		EncodeADDI(insts.T0, insts.T0, -1),
	)
	b.Emit(EncodeBNE(insts.T0, insts.Zero, loop-b.Offset()))
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "loop_sum",
		Description:  "Sum 1..100 in a counted loop - measures loop branch prediction",
		Program:      b.Bytes(),
		ExpectedExit: 5050,
	}
}

func compressedLoop() Benchmark {
	b := new(Builder)
	b.EmitC(
		EncodeCLI(insts.A0, 0),
		EncodeCLI(insts.A1, 10),
	)
	loop := b.Offset()
	b.EmitC(
		EncodeCADD(insts.A0, insts.A1),
		EncodeCADDI(insts.A1, -1),
	)
	b.EmitC(EncodeCBNEZ(insts.A1, loop-b.Offset()))
	b.Emit(exitSequence()...)

	return Benchmark{
		Name:         "compressed_loop",
		Description:  "Sum 1..10 with C.ADD/C.ADDI/C.BNEZ - measures mixed-length fetch",
		Program:      b.Bytes(),
		ExpectedExit: 55,
	}
}
