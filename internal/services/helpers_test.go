package services

import (
	"testing"

	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedRestaurant creates a restaurant owned by owner and points the owner's
// AppConfig at it.
func seedRestaurant(t *testing.T, db *gorm.DB, owner *identity.User) uuid.UUID {
	t.Helper()
	r := models.Restaurant{Name: "Cafe " + owner.Email, OwnerUserID: owner.ID}
	require.NoError(t, db.Create(&r).Error)
	require.NoError(t, db.Create(&models.AppConfig{OwnerUserID: owner.ID, RestaurantID: &r.ID, SetupComplete: true}).Error)
	return r.ID
}

func seedOrder(t *testing.T, db *gorm.DB, restaurantID uuid.UUID, status, orderType string, items int) models.Order {
	t.Helper()
	o := models.Order{RestaurantID: restaurantID, Status: status, OrderType: orderType, TotalCents: 1250}
	require.NoError(t, db.Create(&o).Error)
	for i := 0; i < items; i++ {
		require.NoError(t, db.Create(&models.OrderItem{RestaurantID: restaurantID, OrderID: o.ID, Name: "Mofongo", Qty: 1, PriceCents: 1250}).Error)
	}
	return o
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
