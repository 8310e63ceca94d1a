package core

import (
	"time"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

// recordRun stores a completed scoring run and its row scores in the history store.
// History is best effort, so failures are only logged. A run whose row scores
// could not be stored is left without an end time.
func recordRun(mgr contract.CacheManager, cfg *contract.Config, st *schema.ScoredTable, start time.Time) {
	if mgr == nil || st == nil {
		return
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return
	}

	runID, err := history.BeginRun(start, cfg.TablePath, cfg.RunParams())
	if err != nil {
		contract.LogWarn("Failed to begin history run", err)
		return
	}

	if err := history.RecordRowScores(runID, start, toRowScores(st)); err != nil {
		contract.LogWarn("Failed to record row scores", err)
		return
	}

	if err := history.EndRun(runID, time.Now(), len(st.Rows)); err != nil {
		contract.LogWarn("Failed to end history run", err)
		return
	}
	contract.Logger.WithField("run_id", runID).Debug("Recorded scoring run")
}

func toRowScores(st *schema.ScoredTable) []schema.RowScore {
	rows := make([]schema.RowScore, len(st.Rows))
	for i, r := range st.Rows {
		rows[i] = schema.RowScore{
			RowIndex: r.Index,
			Values:   r.Values,
			Score:    r.Score,
			Label:    schema.GetPlainLabel(r.Score),
		}
	}
	return rows
}
