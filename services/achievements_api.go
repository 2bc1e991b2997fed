package services

import (
	"prediction-league-system/models"
	"prediction-league-system/utils"

	"github.com/gofiber/fiber/v2"
)

// GetMyAchievements returns the caller's unlocks, newest first.
func (l *LedgerService) GetMyAchievements(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	unlocks, err := l.ForUser(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load achievements"})
	}
	return c.JSON(unlocks)
}

// GetUserAchievements is the admin/profile view of another user's unlocks.
func (l *LedgerService) GetUserAchievements(c *fiber.Ctx) error {
	unlocks, err := l.ForUser(c.Params("user_id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load achievements"})
	}
	return c.JSON(unlocks)
}

// GetCatalog lists every achievement definition. Hidden-rarity entries keep
// their name but drop the description until unlocked, so surprises survive.
func (l *LedgerService) GetCatalog(c *fiber.Ctx) error {
	var defs []models.Achievement
	if err := l.DB.Order("scope ASC, slug ASC").Find(&defs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load catalog"})
	}

	type catalogEntry struct {
		models.Achievement
		DisplayName string `json:"display_name"`
	}
	out := make([]catalogEntry, 0, len(defs))
	for _, d := range defs {
		if d.Rarity == models.RarityHidden {
			d.Description = "???"
		}
		out = append(out, catalogEntry{Achievement: d, DisplayName: utils.HumanizeSlug(d.Slug)})
	}
	return c.JSON(out)
}
