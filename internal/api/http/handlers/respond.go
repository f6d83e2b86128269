package handlers

import "github.com/gofiber/fiber/v2"

// ok writes the uniform success envelope.
func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// created writes the success envelope with a 201 status.
func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}
