package repository

import "gorm.io/gorm"

// paginate is a GORM scope implementing page-number pagination. Pages are
// 1-based; an out-of-range page yields an empty result, not an error.
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
