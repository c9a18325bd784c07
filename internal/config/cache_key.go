package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamVariabilityKey returns the cache key for an exam's variability report
func (r *CacheKeyStruct) ExamVariabilityKey(examID string) string {
	return fmt.Sprintf("exam:%s:variability", examID)
}

var CacheKey = NewCacheKeyStruct()
