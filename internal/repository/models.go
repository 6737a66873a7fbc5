package repository

// AllModels lists every GORM model for AutoMigrate in development.
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&CityModel{},
		&CarModel{},
		&CouponModel{},
		&BookingModel{},
		&PaymentModel{},
		&ReviewModel{},
	}
}
