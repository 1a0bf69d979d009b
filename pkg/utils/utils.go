// Package utils provides the snowflake ID generator and pagination helpers.
package utils

import (
	"sync"
	"time"
)

// SnowflakeID generates roughly time-ordered unique int64 IDs:
// timestamp(41 bits) | nodeID(10 bits) | sequence(12 bits).
type SnowflakeID struct {
	mu        sync.Mutex
	timestamp int64
	sequence  int64
	nodeID    int64
}

// NewSnowflakeID creates a generator for the given node.
func NewSnowflakeID(nodeID int64) *SnowflakeID {
	return &SnowflakeID{nodeID: nodeID & 0x3FF}
}

// Generate returns the next ID, spinning to the next millisecond when the
// per-millisecond sequence overflows.
func (s *SnowflakeID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now == s.timestamp {
		s.sequence = (s.sequence + 1) & 0xFFF
		if s.sequence == 0 {
			for now <= s.timestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}
	s.timestamp = now

	return (now << 22) | (s.nodeID << 12) | s.sequence
}

// Pagination carries page math for list endpoints.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int64 `json:"pages"`
}

// NewPagination normalizes page/pageSize and computes page count.
func NewPagination(page, pageSize int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &Pagination{Page: page, PageSize: pageSize, Total: total, Pages: pages}
}

// Offset is the database query offset for this page.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit is the database query limit for this page.
func (p *Pagination) Limit() int {
	return p.PageSize
}
