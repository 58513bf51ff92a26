package types

// Output bounds for a single round. The ceiling follows the 64 byte limit
// the chained vectors were generated with.
const (
	MIN_KEYSIZE = 10
	MAX_KEYSIZE = 64
)

const (
	DEFAULT_LOG_N      uint8  = 20
	DEFAULT_R          uint32 = 8
	DEFAULT_P          uint32 = 1
	DEFAULT_ITERATIONS uint32 = 100
	DEFAULT_KEYSIZE    int    = 16
)
