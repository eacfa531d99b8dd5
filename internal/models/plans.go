package models

// Plan describes a storage tier available for purchase
type Plan struct {
	Name         string `json:"name"`
	StorageLimit int64  `json:"storageLimit"`
	Amount       int64  `json:"amount"` // INR, zero means free
}

// Plans is the tier catalog; FREE is the registration default
var Plans = map[string]Plan{
	"FREE": {
		Name:         "FREE",
		StorageLimit: 1 * GB,
		Amount:       0,
	},
	"PRO_10GB": {
		Name:         "PRO_10GB",
		StorageLimit: 10 * GB,
		Amount:       99,
	},
	"PRO_50GB": {
		Name:         "PRO_50GB",
		StorageLimit: 50 * GB,
		Amount:       299,
	},
}
