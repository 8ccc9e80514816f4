package engine

import "github.com/gsfdstack/gsfd-analysis/internal/models"

// Classification partitions the crash reports of one run.
type Classification struct {
	// ExpectedByNode maps each scheduled node to its crash delta.
	ExpectedByNode map[models.NodeID]float64

	// Correct, Duplicated and Wrong map each detection slot to the delta of
	// the report that was classified last into that category.
	Correct    map[models.CrashKey]float64
	Duplicated map[models.CrashKey]float64
	Wrong      map[models.CrashKey]float64

	NScheduled        int
	NExpectedDetected int

	// Rate is |Correct| / NExpectedDetected; absent when nothing was expected.
	Rate models.Optional

	// AllCorrect holds when every expected slot was detected exactly once,
	// nothing was wrong or duplicated, and no crashed node reappeared.
	AllCorrect bool
}

// Classify partitions reported crashes into correct, duplicated and wrong
// detections. The first report for a slot that is not earlier than the
// scheduled crash wins; every other report for a scheduled node is a duplicate,
// including a too-early report arriving before the valid one.
func Classify(expected []models.ExpectedCrash, reported []models.ReportedCrash, catastrophe bool, nNodes, nReappeared int) Classification {
	c := Classification{
		ExpectedByNode: make(map[models.NodeID]float64, len(expected)),
		Correct:        make(map[models.CrashKey]float64),
		Duplicated:     make(map[models.CrashKey]float64),
		Wrong:          make(map[models.CrashKey]float64),
	}
	for _, e := range expected {
		c.ExpectedByNode[e.Node] = e.Delta
	}

	for _, r := range reported {
		key := r.Key()
		expectedDelta, scheduled := c.ExpectedByNode[r.Node]
		if !scheduled {
			c.Wrong[key] = r.Delta
			continue
		}
		if _, seen := c.Correct[key]; r.Delta >= expectedDelta && !seen {
			c.Correct[key] = r.Delta
		} else {
			c.Duplicated[key] = r.Delta
		}
	}

	c.NScheduled = len(expected)
	c.NExpectedDetected = ExpectedDetections(c.NScheduled, nNodes, catastrophe)
	if c.NExpectedDetected > 0 {
		c.Rate = models.Some(float64(len(c.Correct)) / float64(c.NExpectedDetected))
	}

	c.AllCorrect = c.NExpectedDetected == len(c.Correct) &&
		len(c.Duplicated) == 0 &&
		len(c.Wrong) == 0 &&
		nReappeared == 0
	return c
}

// ExpectedDetections returns how many (node, reporter) detections a run with
// nScheduled crashes among nNodes nodes should produce.
//
// In catastrophe mode all crashes happen at once, so every surviving node
// detects every crashed one. Otherwise crashes are sequential and each crashed
// node stops detecting the ones after it.
func ExpectedDetections(nScheduled, nNodes int, catastrophe bool) int {
	if catastrophe {
		return nScheduled * (nNodes - nScheduled)
	}
	return nScheduled*nNodes - nScheduled*(nScheduled+1)/2
}
