package userController

import (
	"learnify/database"
	"learnify/middleware"
	"learnify/models"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers lists non-admin accounts, paginated. Admin only.
func GetAllUsers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	// Set default pagination
	page := 1
	limit := 10
	if ok {
		if reqData.Page != nil {
			page = *reqData.Page
		}
		if reqData.Limit != nil {
			limit = *reqData.Limit
		}
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.User{}).Where("role <> ?", models.RoleAdmin)

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var users []models.User
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}

	for i := range users {
		users[i].Password = ""
	}

	response := map[string]interface{}{
		"users": users,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", response)
}

// getUserByParam resolves the :id path param to a user. On a bad or unknown
// id it writes the error response itself and returns a nil user; callers must
// bail out on nil, since the returned error mirrors the write and is usually
// nil.
func getUserByParam(c *fiber.Ctx) (*models.User, error) {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil || userID <= 0 {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	return &user, nil
}

func GetUser(c *fiber.Ctx) error {
	user, err := getUserByParam(c)
	if user == nil {
		return err
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}

func UpdateUser(c *fiber.Ctx) error {
	user, err := getUserByParam(c)
	if user == nil {
		return err
	}

	reqData := new(struct {
		FullName *string `json:"full_name"`
		IsActive *bool   `json:"is_active"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.FullName != nil {
		user.FullName = *reqData.FullName
	}
	if reqData.IsActive != nil {
		user.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}

func DeleteUser(c *fiber.Ctx) error {
	user, err := getUserByParam(c)
	if user == nil {
		return err
	}

	if err := database.Database.Db.Delete(user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}
