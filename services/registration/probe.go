package registration

import (
	"context"
	"time"

	"darisni/models"
	"darisni/utils"

	"go.uber.org/zap"
)

// Probed field kinds. Email and phone uniqueness is owned by the auth layer
// at commit time, so their flags stay unknown here.
const (
	ProbeFieldNationalID = "nationalId"
)

// probeHandle tracks one in-flight probe so a newer probe for the same
// (draft, field) can cancel it, and so a finished probe can remove its own
// entry without clobbering a successor's.
type probeHandle struct {
	cancel context.CancelFunc
}

// Probe schedules an advisory uniqueness lookup for the field. It is meant
// to fire on field blur: a rapid sequence of edits cancels the pending probe
// so only the last settled value reaches the backend. The result lands in
// the draft's uniqueness flags; it never blocks advancement, and transport
// failures fail open to unknown.
func (s *DefaultRegistrationService) Probe(ctx context.Context, id, fieldKind, value string) {
	if fieldKind != ProbeFieldNationalID {
		// Advisory probes are only wired for the national ID today.
		s.setFlag(ctx, id, fieldKind, models.UniquenessUnknown)
		return
	}

	key := id + ":" + fieldKind
	probeCtx, cancel := context.WithCancel(context.Background())
	handle := &probeHandle{cancel: cancel}

	s.probeMu.Lock()
	if s.probeCancels == nil {
		s.probeCancels = make(map[string]*probeHandle)
	}
	if prior, ok := s.probeCancels[key]; ok {
		prior.cancel()
	}
	s.probeCancels[key] = handle
	s.probeMu.Unlock()

	// Mark in-flight before the debounce window so readers see "unknown"
	// rather than a stale verdict for the previous value.
	s.setFlag(ctx, id, fieldKind, models.UniquenessUnknown)

	go func() {
		defer func() {
			cancel()
			s.probeMu.Lock()
			if s.probeCancels[key] == handle {
				delete(s.probeCancels, key)
			}
			s.probeMu.Unlock()
		}()

		debounce := s.ProbeDebounce
		if debounce > 0 {
			timer := time.NewTimer(debounce)
			defer timer.Stop()
			select {
			case <-probeCtx.Done():
				return
			case <-timer.C:
			}
		} else if probeCtx.Err() != nil {
			return
		}

		s.runProbe(probeCtx, id, fieldKind, value)
	}()
}

// runProbe performs the lookup and records the tri-state verdict.
func (s *DefaultRegistrationService) runProbe(ctx context.Context, id, fieldKind, value string) {
	taken, err := s.Profiles.ExistsByNationalID(value)
	if err != nil {
		// Fail open: a transient backend error must not block the user, it
		// only skips the advisory hint.
		utils.GetLogger().Warn("uniqueness probe failed",
			zap.String("draftID", id), zap.String("field", fieldKind), zap.Error(err))
		s.setFlag(ctx, id, fieldKind, models.UniquenessUnknown)
		return
	}
	if ctx.Err() != nil {
		// A newer probe superseded this one; drop the verdict.
		return
	}

	verdict := models.UniquenessAvailable
	if taken {
		verdict = models.UniquenessTaken
	}
	s.setFlag(ctx, id, fieldKind, verdict)
}

// setFlag records a verdict under the draft's flag key. Flags are stored
// apart from the draft document so an asynchronous probe write can never
// discard a concurrent step merge or file staging.
func (s *DefaultRegistrationService) setFlag(ctx context.Context, id, fieldKind string, verdict models.UniquenessResult) {
	if err := s.Drafts.SaveFlag(ctx, id, fieldKind, verdict); err != nil {
		utils.GetLogger().Warn("failed to record uniqueness flag", zap.String("draftID", id), zap.Error(err))
	}
}
