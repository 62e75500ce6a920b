// Package store owns the store master.
package store

import (
	"errors"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StoreInput struct {
	StoreCode string `json:"store_code"`
	Name      string `json:"name"`
	Location  string `json:"location"`
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

// POST /api/stores
func CreateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StoreInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.StoreCode == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "store_code and name are required")
		}

		var count int64
		database.DB.Model(&models.Store{}).Where("store_code = ?", body.StoreCode).Count(&count)
		if count > 0 {
			return apperr.Business("a store with code %s already exists", body.StoreCode)
		}

		store := models.Store{
			StoreCode: body.StoreCode,
			Name:      body.Name,
			Location:  body.Location,
		}
		if err := database.DB.Create(&store).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create store")
		}
		return c.Status(fiber.StatusCreated).JSON(store)
	}
}

// GET /api/stores
func ListStoresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var stores []models.Store
		if err := database.DB.Order("id ASC").Find(&stores).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list stores")
		}
		return c.JSON(stores)
	}
}

// GET /api/stores/:id
func GetStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var store models.Store
		if err := database.DB.First(&store, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Store", id)
			}
			return err
		}
		return c.JSON(store)
	}
}

// PUT /api/stores/:id
func UpdateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body StoreInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		var store models.Store
		if err := database.DB.First(&store, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Store", id)
			}
			return err
		}

		if body.StoreCode != "" && body.StoreCode != store.StoreCode {
			var count int64
			database.DB.Model(&models.Store{}).
				Where("store_code = ? AND id <> ?", body.StoreCode, id).
				Count(&count)
			if count > 0 {
				return apperr.Business("a store with code %s already exists", body.StoreCode)
			}
			store.StoreCode = body.StoreCode
		}
		if body.Name != "" {
			store.Name = body.Name
		}
		if body.Location != "" {
			store.Location = body.Location
		}

		if err := database.DB.Save(&store).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update store")
		}
		return c.JSON(store)
	}
}
