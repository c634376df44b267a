package postgres

import "gorm.io/gorm/clause"

func lockForUpdateSkipLocked() clause.Expression {
	return clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}
}
