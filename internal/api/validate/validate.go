package validate

import (
	"fmt"
	"regexp"
)

// userIdRx keeps user ids to a store-safe charset: letters, digits,
// underscore, hyphen and dot, up to 64 bytes.
var userIdRx = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// UserID checks the path/body user identifier.
func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("user_id is required")
	}
	if !userIdRx.MatchString(v) {
		return fmt.Errorf("user_id must match %s", userIdRx.String())
	}
	return nil
}

// IngestEvent validates the POST /events body.
func IngestEvent(userID string, duration int) error {
	if err := UserID(userID); err != nil {
		return err
	}
	if duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

// ThresholdUpdate validates the threshold merge body. Absent fields are nil
// and skip validation; supplied fields must be positive.
func ThresholdUpdate(daily, night *int) error {
	if daily != nil && *daily <= 0 {
		return fmt.Errorf("daily threshold must be positive")
	}
	if night != nil && *night <= 0 {
		return fmt.Errorf("night threshold must be positive")
	}
	return nil
}
