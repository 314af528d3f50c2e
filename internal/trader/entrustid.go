package trader

import (
	"fmt"
	"strconv"
	"strings"
)

const entrustIDSep = "#"

// EncodeEntrustID formats the (front id, session id, order ref) triple into
// the correlation token used to match outbound orders to inbound
// acknowledgements, including across process restarts. Fixed widths 6/10/6,
// zero padded.
func EncodeEntrustID(frontID, sessionID, orderRef uint32) string {
	return fmt.Sprintf("%06d%s%010d%s%06d", frontID, entrustIDSep, sessionID, entrustIDSep, orderRef)
}

// DecodeEntrustID splits a correlation token back into its triple. The only
// shape requirement is exactly three delimiter-separated fields; each field
// is then parsed permissively, with non-numeric or overflowing text yielding
// zero rather than failure. Callers wanting well-formedness beyond the field
// count must check it themselves.
func DecodeEntrustID(id string) (frontID, sessionID, orderRef uint32, err error) {
	parts := strings.Split(id, entrustIDSep)
	if len(parts) != 3 {
		return 0, 0, 0, ErrMalformedEntrustID
	}
	return parseRef(parts[0]), parseRef(parts[1]), parseRef(parts[2]), nil
}

// parseRef tolerates the space padding some terminals put in their order
// references.
func parseRef(s string) uint32 {
	v, _ := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	return uint32(v)
}
