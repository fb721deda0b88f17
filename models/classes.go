package models

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Classes are the labels the underwater models were trained on, indexed by
// the class id the model emits.
var Classes = []string{
	"fish",
	"jellyfish",
	"penguin",
	"puffin",
	"shark",
	"starfish",
	"stingray",
}

// ClassColors maps each class to the hex color used for boxes and charts.
var ClassColors = map[string]string{
	"fish":      "#FF6B6B",
	"jellyfish": "#4ECDC4",
	"penguin":   "#45B7D1",
	"puffin":    "#96CEB4",
	"shark":     "#FECA57",
	"starfish":  "#FF9FF3",
	"stingray":  "#54A0FF",
}

// ClassEmoji decorates summary lines, one glyph per class.
var ClassEmoji = map[string]string{
	"fish":      "🐠",
	"jellyfish": "🪼",
	"penguin":   "🐧",
	"puffin":    "🦅",
	"shark":     "🦈",
	"starfish":  "⭐",
	"stingray":  "🐙",
}

const fallbackColor = "#FFFFFF"

// ClassName resolves a model class id to its label. Ids outside the trained
// set still get a stable synthetic name.
func ClassName(id int) string {
	if id >= 0 && id < len(Classes) {
		return Classes[id]
	}
	return fmt.Sprintf("class_%d", id)
}

// ClassColor returns the display color for a class, white for classes the
// color table does not know.
func ClassColor(name string) string {
	if c, ok := ClassColors[name]; ok {
		return c
	}
	return fallbackColor
}

// ParseClassColor parses a class color into an RGB triple. Invalid hex
// strings fall back to white rather than failing the render.
func ParseClassColor(name string) (r, g, b uint8) {
	c, err := colorful.Hex(ClassColor(name))
	if err != nil {
		c, _ = colorful.Hex(fallbackColor)
	}
	cr, cg, cb := c.RGB255()
	return cr, cg, cb
}
