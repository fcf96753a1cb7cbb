package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/middleware"
)

type RegisterUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=150"`
	Password     string `json:"password" validate:"required,min=8"`
	Name         string `json:"name" validate:"required"`
	PhoneNumber  string `json:"phone_number"`
	Role         string `json:"role" validate:"required,oneof=manager staff"`
	DepartmentID *uint  `json:"department_id"`
}

func RegisterUser(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if v := Authorization.CanManageUser(actor, Authorization.ActionCreate, nil); !v.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": v.Reason})
	}

	var req RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// Managers provision accounts into their own department only.
	if !actor.IsSuperuser {
		if req.DepartmentID == nil || actor.Profile == nil || actor.Profile.DepartmentID == nil ||
			*req.DepartmentID != *actor.Profile.DepartmentID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You can only create users in your own department",
			})
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create user"})
	}

	user := Models.User{
		Username:    req.Username,
		Password:    hash,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Profile: &Models.Profile{
			Role:         req.Role,
			DepartmentID: req.DepartmentID,
		},
	}
	if err := Models.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A user with this username already exists"})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func FetchUsers(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	var users []Models.User
	q := Authorization.ScopeUsers(Models.DB.Model(&Models.User{}), actor)
	if err := q.Preload("Profile.Department").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve users"})
	}
	return c.JSON(users)
}

type UpdateUserRequest struct {
	Name         *string `json:"name"`
	PhoneNumber  *string `json:"phone_number"`
	Role         *string `json:"role" validate:"omitempty,oneof=manager staff"`
	DepartmentID *uint   `json:"department_id"`
	Password     *string `json:"password" validate:"omitempty,min=8"`
}

func UpdateUser(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID"})
	}

	var target Models.User
	if err := Models.DB.Preload("Profile").First(&target, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.CanManageUser(actor, Authorization.ActionUpdate, &target); !v.Allowed {
		// Cross-department targets read as not-found, everything else as 403.
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update user"})
		}
		updates["password"] = hash
	}
	if len(updates) > 0 {
		if err := Models.DB.Model(&target).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update user"})
		}
	}

	if target.Profile != nil && (req.Role != nil || req.DepartmentID != nil) {
		profileUpdates := map[string]interface{}{}
		if req.Role != nil {
			profileUpdates["role"] = *req.Role
		}
		if req.DepartmentID != nil {
			// Only superusers move users across departments.
			if !actor.IsSuperuser {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "Only administrators can move users between departments",
				})
			}
			profileUpdates["department_id"] = *req.DepartmentID
		}
		if err := Models.DB.Model(target.Profile).Updates(profileUpdates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update user"})
		}
	}

	Models.DB.Preload("Profile.Department").First(&target, target.ID)
	return c.JSON(target)
}

func DeleteUser(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID"})
	}

	var target Models.User
	if err := Models.DB.Preload("Profile").First(&target, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.CanManageUser(actor, Authorization.ActionDelete, &target); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	if target.Profile != nil {
		Models.DB.Delete(target.Profile)
	}
	Models.DB.Delete(&target)

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
