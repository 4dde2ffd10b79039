package domain

import (
	"strings" // Line splitting
	"time"    // Timestamps
)

// Recipe Model
type Recipe struct {
	ID                uint      `gorm:"primaryKey" json:"id"`                                   // Primary key
	Title             string    `gorm:"size:100;not null" json:"title"`                         // Recipe title
	Image             string    `gorm:"size:255;not null" json:"image"`                         // Image reference, required
	SmallDescription  string    `gorm:"size:500;not null" json:"small_description"`             // Short description
	EstimatedPrepTime string    `gorm:"size:30;not null" json:"estimated_prep_time"`            // Free text, e.g. "1 Hour 30 Minutes"
	IngredientsList   string    `gorm:"type:text;not null" json:"ingredients_list"`             // One ingredient per line
	Process           string    `gorm:"type:text;not null" json:"process"`                      // One step per line
	AuthorID          uint      `gorm:"not null;index" json:"author_id"`                        // Foreign key to User
	Author            User      `gorm:"constraint:OnDelete:CASCADE;" json:"author"`             // Owning user, deleting it deletes the recipe
	Reviews           []Review  `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;" json:"-"` // Reviews of this recipe
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`                 // Creation time, feed ordering key
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`                       // Last edit time
}

// Recipe field limits
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxPrepTimeLength    = 30
)

// IngredientItems returns the ingredients list split into non-blank lines
func (r *Recipe) IngredientItems() []string {
	return splitLines(r.IngredientsList)
}

// ProcessSteps returns the process split into non-blank lines
func (r *Recipe) ProcessSteps() []string {
	return splitLines(r.Process)
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
