package core

// DefaultColor is the display tag applied to budget categories that have no
// entry in the category color table.
const DefaultColor = "bg-gray-500"

var categoryColors = map[string]string{
	"Housing":        "bg-wealth-blue",
	"Food":           "bg-wealth-yellow",
	"Transportation": "bg-wealth-red",
	"Entertainment":  "bg-wealth-purple",
	"Utilities":      "bg-wealth-green",
	"Savings":        "bg-emerald-500",
	"Shopping":       "bg-pink-500",
	"Health":         "bg-cyan-500",
	"Education":      "bg-amber-500",
	"Travel":         "bg-indigo-500",
	"Other":          "bg-gray-500",
}

// CategoryColor resolves the display tag for a budget category name.
// Unknown names get DefaultColor; the function is total over all strings.
func CategoryColor(name string) string {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	return DefaultColor
}
