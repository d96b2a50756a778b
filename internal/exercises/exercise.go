package exercises

import "errors"

var ErrExerciseNotFound = errors.New("exercise not found")

const (
	TypeStrength  = "Strength"
	TypeCardio    = "Cardio"
	TypeEndurance = "Endurance"
)

type Exercise struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// DefaultExercises is the built-in catalog used when seeding without an import.
var DefaultExercises = []Exercise{
	{Name: "Bench Press", Type: TypeStrength},
	{Name: "Running", Type: TypeCardio},
	{Name: "Cycling", Type: TypeCardio},
	{Name: "Squats", Type: TypeStrength},
	{Name: "Deadlift", Type: TypeStrength},
	{Name: "Leg Raises", Type: TypeEndurance},
	{Name: "Seated Rows", Type: TypeStrength},
	{Name: "Plank", Type: TypeEndurance},
}
