package core

// BranchPredictorConfig holds configuration for the branch predictor.
type BranchPredictorConfig struct {
	// BHTSize is the number of entries in the Branch History Table.
	// Must be a power of 2. Default is 1024.
	BHTSize uint32 `json:"bht_size"`
	// BTBSize is the number of entries in the Branch Target Buffer.
	// Must be a power of 2. Default is 256.
	BTBSize uint32 `json:"btb_size"`
}

// DefaultBranchPredictorConfig returns a default configuration.
func DefaultBranchPredictorConfig() BranchPredictorConfig {
	return BranchPredictorConfig{
		BHTSize: 1024,
		BTBSize: 256,
	}
}

// BranchPredictorStats holds statistics for the branch predictor.
type BranchPredictorStats struct {
	// Predictions is the number of conditional branch predictions made.
	Predictions uint64
	// Correct is the number of correct direction predictions.
	Correct uint64
	// Mispredictions is the number of incorrect direction predictions.
	Mispredictions uint64
	BTBHits        uint64
	BTBMisses      uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s BranchPredictorStats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// BTBHitRate returns the BTB hit rate as a percentage.
func (s BranchPredictorStats) BTBHitRate() float64 {
	total := s.BTBHits + s.BTBMisses
	if total == 0 {
		return 0
	}
	return float64(s.BTBHits) / float64(total) * 100
}

// Prediction represents a branch prediction result.
type Prediction struct {
	// Taken indicates whether the branch is predicted to be taken.
	Taken bool
	// Target is the predicted target address (if known from BTB).
	Target uint64
	// TargetKnown indicates whether the target address is known.
	TargetKnown bool
}

// Correct reports whether the prediction matches the resolved outcome. A
// taken branch is only correct when the BTB supplied the right target.
func (p Prediction) Correct(taken bool, target uint64) bool {
	if p.Taken != taken {
		return false
	}
	return !taken || (p.TargetKnown && p.Target == target)
}

// BranchPredictor implements a 2-bit saturating counter (bimodal) predictor
// with a Branch Target Buffer (BTB).
type BranchPredictor struct {
	// 2-bit counters. 0 and 1 predict not taken, 2 and 3 predict taken.
	bht []uint8

	btb      []btbEntry
	btbValid []bool

	bhtSize uint32
	btbSize uint32

	stats BranchPredictorStats
}

type btbEntry struct {
	pc     uint64
	target uint64
}

// NewBranchPredictor creates a new branch predictor with the given configuration.
func NewBranchPredictor(config BranchPredictorConfig) *BranchPredictor {
	bhtSize := config.BHTSize
	btbSize := config.BTBSize

	if bhtSize == 0 {
		bhtSize = 1024
	}
	if btbSize == 0 {
		btbSize = 256
	}

	bp := &BranchPredictor{
		bht:      make([]uint8, bhtSize),
		btb:      make([]btbEntry, btbSize),
		btbValid: make([]bool, btbSize),
		bhtSize:  bhtSize,
		btbSize:  btbSize,
	}
	bp.resetCounters()

	return bp
}

func (bp *BranchPredictor) resetCounters() {
	// Weakly taken.
	for i := range bp.bht {
		bp.bht[i] = 2
	}
}

// Instructions are 2-byte aligned once compressed code is allowed, so bit 0
// is dropped from the index.
func (bp *BranchPredictor) bhtIndex(pc uint64) uint32 {
	return uint32((pc >> 1) & uint64(bp.bhtSize-1))
}

func (bp *BranchPredictor) btbIndex(pc uint64) uint32 {
	return uint32((pc >> 1) & uint64(bp.btbSize-1))
}

func (bp *BranchPredictor) lookupTarget(pc uint64) (uint64, bool) {
	idx := bp.btbIndex(pc)
	if bp.btbValid[idx] && bp.btb[idx].pc == pc {
		bp.stats.BTBHits++
		return bp.btb[idx].target, true
	}
	bp.stats.BTBMisses++
	return 0, false
}

func (bp *BranchPredictor) storeTarget(pc, target uint64) {
	idx := bp.btbIndex(pc)
	bp.btb[idx] = btbEntry{pc: pc, target: target}
	bp.btbValid[idx] = true
}

// Predict makes a conditional branch prediction for the given PC.
func (bp *BranchPredictor) Predict(pc uint64) Prediction {
	pred := Prediction{Taken: bp.bht[bp.bhtIndex(pc)] >= 2}
	pred.Target, pred.TargetKnown = bp.lookupTarget(pc)

	bp.stats.Predictions++
	return pred
}

// Update updates the predictor with the actual branch outcome.
func (bp *BranchPredictor) Update(pc uint64, taken bool, target uint64) {
	idx := bp.bhtIndex(pc)
	counter := bp.bht[idx]

	if (counter >= 2) == taken {
		bp.stats.Correct++
	} else {
		bp.stats.Mispredictions++
	}

	if taken {
		if counter < 3 {
			bp.bht[idx] = counter + 1
		}
		bp.storeTarget(pc, target)
	} else if counter > 0 {
		bp.bht[idx] = counter - 1
	}
}

// PredictJump returns the BTB target for an unconditional jump.
func (bp *BranchPredictor) PredictJump(pc uint64) Prediction {
	target, known := bp.lookupTarget(pc)
	return Prediction{Taken: true, Target: target, TargetKnown: known}
}

// UpdateJump records the resolved target of an unconditional jump.
func (bp *BranchPredictor) UpdateJump(pc, target uint64) {
	bp.storeTarget(pc, target)
}

// Stats returns the branch predictor statistics.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset clears all predictor state and statistics.
func (bp *BranchPredictor) Reset() {
	bp.resetCounters()
	for i := range bp.btbValid {
		bp.btbValid[i] = false
	}
	bp.stats = BranchPredictorStats{}
}
