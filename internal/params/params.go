package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	// StatParam bounds the statistical distance of sampled values.
	StatParam = 80

	// MaxOTs is the default ceiling on the size of a single oblivious transfer batch.
	MaxOTs = 10000

	// MaxFrameBytes is the largest frame accepted from a peer.
	MaxFrameBytes = 64 << 20

	// DefaultMaxBatch bounds how many protocols the engine evaluates in one round.
	DefaultMaxBatch = 4096
)
