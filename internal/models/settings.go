package models

// StoreSettings stores shop-wide knobs managed via the admin panel.
// There should be only one row (singleton pattern).
type StoreSettings struct {
	BaseModel
	FreeDeliveryThreshold float64 `json:"free_delivery_threshold"`
	DeliveryCharge        float64 `json:"delivery_charge"`
	CODEnabled            bool    `gorm:"default:true" json:"cod_enabled"`
	StoreOpen             bool    `gorm:"default:true" json:"store_open"`
	SupportPhone          string  `json:"support_phone"`
}
