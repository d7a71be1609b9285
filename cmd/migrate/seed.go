package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/shippers"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var defaultShipperNames = map[enums.Carrier]string{
	enums.CarrierUPS:   "United Parcel Service",
	enums.CarrierFedEx: "FedEx",
	enums.CarrierUSPS:  "United States Postal Service",
	enums.CarrierDHL:   "DHL Express",
}

// seedShippers inserts one shipper per supported carrier that is not yet listed.
func seedShippers(ctx context.Context, gdb *gorm.DB) (int, error) {
	repo := shippers.NewRepository(gdb)
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list shippers: %w", err)
	}
	present := make(map[enums.Carrier]bool, len(existing))
	for _, s := range existing {
		present[s.CarrierCode] = true
	}

	created := 0
	for _, carrier := range enums.Carriers() {
		if present[carrier] {
			continue
		}
		name, ok := defaultShipperNames[carrier]
		if !ok {
			name = carrier.String()
		}
		if _, err := repo.Create(ctx, &models.Shipper{CompanyName: name, CarrierCode: carrier}); err != nil {
			return created, fmt.Errorf("create shipper %s: %w", carrier, err)
		}
		created++
	}
	return created, nil
}
