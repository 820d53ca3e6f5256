package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"scms_backend/internal/model"
	"scms_backend/internal/util"
)

// IDGenerator 投诉编号生成器，Observe 用于加载已有数据后同步内部状态
type IDGenerator interface {
	NextID() string
	Observe(id string)
}

// SequentialIDGenerator 单调递增的 COMP-NNN，编号不会因为集合大小变化而重复
type SequentialIDGenerator struct {
	mu   sync.Mutex
	last int
}

func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

func (g *SequentialIDGenerator) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return FormatComplaintID(g.last)
}

func (g *SequentialIDGenerator) Observe(id string) {
	n, ok := ParseComplaintSequence(id)
	if !ok {
		return
	}
	g.mu.Lock()
	if n > g.last {
		g.last = n
	}
	g.mu.Unlock()
}

func FormatComplaintID(n int) string {
	return fmt.Sprintf("%s%03d", util.ComplaintIDPrefix, n)
}

func ParseComplaintSequence(id string) (int, bool) {
	if !strings.HasPrefix(id, util.ComplaintIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, util.ComplaintIDPrefix))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return util.ComplaintIDPrefix + model.GenerateUUID()
}

func (UUIDGenerator) Observe(string) {}

func NewIDGenerator(strategy string) IDGenerator {
	if strategy == util.IDStrategyUUID {
		return UUIDGenerator{}
	}
	return NewSequentialIDGenerator()
}
