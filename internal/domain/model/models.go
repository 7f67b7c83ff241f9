package model

// AutoMigrate に渡すテーブル一覧
func All() []interface{} {
	return []interface{}{
		&User{},
		&Listing{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&InventoryAdjustment{},
		&AuditLog{},
	}
}
