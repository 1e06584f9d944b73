package kafka

import (
	"fmt"
	"hash/crc32"
	"hash/fnv"
	"math/rand"
	"time"
)

// Strategy names the partition selection algorithm for keyed messages.
// The names match the librdkafka partitioner configuration values.
type Strategy string

const (
	// StrategyConsistent hashes keys with CRC32
	StrategyConsistent Strategy = "consistent"
	// StrategyConsistentRandom is consistent hashing with sticky keyless routing
	StrategyConsistentRandom Strategy = "consistent_random"
	// StrategyMurmur2 hashes keys with murmur2 (the Java client default hash)
	StrategyMurmur2 Strategy = "murmur2"
	// StrategyMurmur2Random is murmur2 hashing with sticky keyless routing
	StrategyMurmur2Random Strategy = "murmur2_random"
	// StrategyFNV1a hashes keys with FNV-1a (the Sarama default hash)
	StrategyFNV1a Strategy = "fnv1a"
	// StrategyFNV1aRandom is FNV-1a hashing with sticky keyless routing
	StrategyFNV1aRandom Strategy = "fnv1a_random"
	// StrategyRandom ignores keys entirely; all messages route through the
	// sticky chooser
	StrategyRandom Strategy = "random"
)

// Strategies lists the supported strategy names
func Strategies() []string {
	return []string{
		string(StrategyConsistent),
		string(StrategyConsistentRandom),
		string(StrategyMurmur2),
		string(StrategyMurmur2Random),
		string(StrategyFNV1a),
		string(StrategyFNV1aRandom),
		string(StrategyRandom),
	}
}

// ParseStrategy validates a strategy name
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if _, err := hasherFor(s); err != nil {
		return "", err
	}
	return s, nil
}

// Partitioner assigns partitions to outgoing messages. Keyed messages hash
// deterministically according to the configured strategy. Keyless messages
// (and all messages under the random strategy) stick to one randomly chosen
// partition for the duration of the linger window, then a new partition is
// chosen when the window elapses.
//
// A Partitioner is not safe for concurrent use; each producer owns one.
type Partitioner struct {
	strategy Strategy
	hash     func([]byte) uint32
	linger   time.Duration
	rng      *rand.Rand
	now      func() time.Time

	// sticky keyless state
	current     int32
	windowStart time.Time
}

// NewPartitioner creates a partitioner for the given strategy. linger bounds
// the sticky window for keyless messages.
func NewPartitioner(strategy Strategy, linger time.Duration) (*Partitioner, error) {
	hash, err := hasherFor(strategy)
	if err != nil {
		return nil, err
	}
	return &Partitioner{
		strategy: strategy,
		hash:     hash,
		linger:   linger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		current:  PartitionAny,
	}, nil
}

// Partition returns the partition for key among n partitions
func (p *Partitioner) Partition(key []byte, n int32) int32 {
	if n <= 1 {
		return 0
	}
	if key != nil && p.strategy != StrategyRandom {
		// Kafka masks out the high bit after hashing, then mods by the
		// partition count.
		return int32(p.hash(key)&0x7fffffff) % n
	}
	return p.sticky(n)
}

// sticky reuses the current keyless partition until the linger window elapses
func (p *Partitioner) sticky(n int32) int32 {
	now := p.now()
	if p.current < 0 || p.current >= n || now.Sub(p.windowStart) > p.linger {
		next := int32(p.rng.Intn(int(n)))
		if next == p.current {
			next = (next + 1) % n
		}
		p.current = next
		p.windowStart = now
	}
	return p.current
}

func hasherFor(s Strategy) (func([]byte) uint32, error) {
	switch s {
	case StrategyConsistent, StrategyConsistentRandom:
		return crc32.ChecksumIEEE, nil
	case StrategyMurmur2, StrategyMurmur2Random:
		return murmur2, nil
	case StrategyFNV1a, StrategyFNV1aRandom:
		return fnv1a, nil
	case StrategyRandom:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown partitioner strategy %q", s)
	}
}

func fnv1a(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

// murmur2 matches the hash used by the Java client and librdkafka,
// seed 0x9747b28c.
func murmur2(b []byte) uint32 {
	const (
		seed uint32 = 0x9747b28c
		m    uint32 = 0x5bd1e995
		r           = 24
	)
	h := seed ^ uint32(len(b))
	for ; len(b) >= 4; b = b[4:] {
		k := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		k *= m
		k ^= k >> r
		k *= m
		h *= m
		h ^= k
	}
	switch len(b) {
	case 3:
		h ^= uint32(b[2]) << 16
		fallthrough
	case 2:
		h ^= uint32(b[1]) << 8
		fallthrough
	case 1:
		h ^= uint32(b[0])
		h *= m
	}
	h ^= h >> 13
	h *= m
	h ^= h >> 15
	return h
}
