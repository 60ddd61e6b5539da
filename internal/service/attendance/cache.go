package attendance

import (
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
)

type statusKey struct {
	recordID     string
	configHash   uint64
	minuteBucket int64
}

// statusCache memoizes the last computed punch state. The key ties the entry
// to the record, the shift configuration and the current minute, so a stale
// entry can never outlive the minute it was computed in.
type statusCache struct {
	mu  sync.Mutex
	key statusKey
	val attendance.CheckStatusResult
	ok  bool
}

func (c *statusCache) get(key statusKey) (attendance.CheckStatusResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ok || c.key != key {
		return attendance.CheckStatusResult{}, false
	}
	return c.val, true
}

func (c *statusCache) put(key statusKey, val attendance.CheckStatusResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.val = val
	c.ok = true
}

func (c *statusCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ok = false
}

func shiftConfigHash(cfg attendance.ShiftConfig) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.Itoa(cfg.StartMinutes)))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(cfg.EndMinutes)))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(cfg.StaleThresholdDays)))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(cfg.MissedCheckoutBufferHours)))
	if cfg.Location != nil {
		h.Write([]byte{':'})
		h.Write([]byte(cfg.Location.String()))
	}
	return h.Sum64()
}
