package registration

import (
	"context"
	"errors"
	"time"

	"darisni/utils"
)

// RedisPasscodeStore issues and verifies passcodes through the OTP cache.
type RedisPasscodeStore struct{}

var _ PasscodeStore = RedisPasscodeStore{}

func (RedisPasscodeStore) Issue(ctx context.Context, draftID string) (string, time.Duration, error) {
	return utils.IssuePasscode(ctx, draftID)
}

// Verify reports a wrong or expired code as ErrPasscodeInvalid; any other
// error is a cache transport failure.
func (RedisPasscodeStore) Verify(ctx context.Context, draftID, code string) error {
	if err := utils.VerifyPasscode(ctx, draftID, code); err != nil {
		if errors.Is(err, utils.ErrPasscodeMismatch) {
			return ErrPasscodeInvalid
		}
		return err
	}
	return nil
}
