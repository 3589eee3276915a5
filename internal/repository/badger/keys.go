package badger

// Key layout. The first three prefixes are read by other consumers and must not change.
const (
	canonicalPrefix  = "inscription:"
	byEventPrefix    = "inscriptions:byEvent:"
	byUserPrefix     = "inscriptions:byUser:"
	ledgerPrefix     = "ledger:"
	dirtyEventPrefix = "resync:event:"
	dirtyUserPrefix  = "resync:user:"
)

func canonicalKey(id string) []byte       { return []byte(canonicalPrefix + id) }
func byEventKey(eventID string) []byte    { return []byte(byEventPrefix + eventID) }
func byUserKey(userID string) []byte      { return []byte(byUserPrefix + userID) }
func ledgerKey(eventID string) []byte     { return []byte(ledgerPrefix + eventID) }
func dirtyEventKey(eventID string) []byte { return []byte(dirtyEventPrefix + eventID) }
func dirtyUserKey(userID string) []byte   { return []byte(dirtyUserPrefix + userID) }
