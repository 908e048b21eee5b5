package cpq

import "fmt"

// ConfigurationDataError reports corrupt catalog data (a rule referencing an
// option or group that does not exist, or a rule with no condition at all).
// No selection state can recover from this; callers should surface it and
// stop rather than retry.
type ConfigurationDataError struct {
	RuleId string
	Reason string
}

func (e *ConfigurationDataError) Error() string {
	return fmt.Sprintf("configuration data error in rule %s: %s", e.RuleId, e.Reason)
}

// PersistenceError wraps a failed save/update against the configuration
// store. Local selection state is preserved by the coordinator so the caller
// can retry without re-entering choices.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
