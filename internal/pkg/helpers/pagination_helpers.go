package helpers

import (
	"math"
	"strconv"
	"strings"
)

const (
	// CatalogPageSize is the fixed number of courses per search page.
	CatalogPageSize = 10
	DefaultPage     = 1 // Default page is 1-based
)

// ParsePage parses a 1-based page number. Anything malformed or below 1 falls back to page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return DefaultPage
	}
	return page
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
// Offsets that would overflow saturate at math.MaxInt64, which is past any real result set
// and still a valid Postgres OFFSET.
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	if size <= 0 {
		size = CatalogPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	if uint64(page-1) > math.MaxInt64/uint64(size) {
		return math.MaxInt64, uint64(size)
	}
	return uint64(page-1) * uint64(size), uint64(size)
}

// TotalPages returns the number of pages needed for totalItems.
// An empty result still has one (empty) page.
func TotalPages(totalItems int64, size int) int {
	if size <= 0 {
		size = CatalogPageSize
	}
	if totalItems <= 0 {
		return 1
	}
	return int((totalItems + int64(size) - 1) / int64(size))
}

// CalculateSliceIndices calculates the start and end indices for slicing an in-memory result.
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	if size <= 0 {
		size = CatalogPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	if totalItems <= 0 {
		return 0, 0
	}
	// Compare page counts before multiplying so huge pages cannot overflow.
	if page-1 >= (totalItems+size-1)/size {
		return totalItems, totalItems
	}

	start = (page - 1) * size
	end = start + size
	if end > totalItems {
		end = totalItems
	}
	return start, end
}
