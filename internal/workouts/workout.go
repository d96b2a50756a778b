package workouts

import "time"

const DefaultWorkoutName = "Workout"

type Workout struct {
	ID        int
	Creator   int
	Name      string
	CreatedAt time.Time
	IsPrivate bool
	IsLogged  bool
}

// Activity is one performed exercise. Optional measurements are nil when absent.
type Activity struct {
	ID            int
	PerformedBy   int
	ExerciseID    int
	ExerciseName  string
	Weight        *int
	WeightUnits   *string
	Reps          *int
	Sets          *int
	Duration      *int
	DurationUnits *string
	Distance      *string
	DistanceUnits *string
	CreatedAt     time.Time
}

type WorkoutView struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
	IsLogged  bool   `json:"is_logged"`
}

// ActivityView is the wire form of an activity. Exercise holds the exercise id
// until WithExerciseName replaces it with the name.
type ActivityView struct {
	ID            int     `json:"id"`
	Exercise      any     `json:"exercise"`
	Sets          *int    `json:"sets"`
	Reps          *int    `json:"reps"`
	Weight        *int    `json:"weight"`
	Duration      *int    `json:"duration"`
	Distance      *string `json:"distance"`
	WeightUnits   *string `json:"weight_units"`
	DurationUnits *string `json:"duration_units"`
	DistanceUnits *string `json:"distance_units"`
}

func (w Workout) Serialize() WorkoutView {
	return WorkoutView{
		ID:        w.ID,
		Name:      w.Name,
		IsPrivate: w.IsPrivate,
		IsLogged:  w.IsLogged,
	}
}

func (a Activity) Serialize() ActivityView {
	return ActivityView{
		ID:            a.ID,
		Exercise:      a.ExerciseID,
		Sets:          a.Sets,
		Reps:          a.Reps,
		Weight:        a.Weight,
		Duration:      a.Duration,
		Distance:      a.Distance,
		WeightUnits:   a.WeightUnits,
		DurationUnits: a.DurationUnits,
		DistanceUnits: a.DistanceUnits,
	}
}

func (v ActivityView) WithExerciseName(name string) ActivityView {
	v.Exercise = name
	return v
}

// View is the wire form with the exercise name already substituted.
func (a Activity) View() ActivityView {
	return a.Serialize().WithExerciseName(a.ExerciseName)
}

func ActivityViews(activities []Activity) []ActivityView {
	views := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, a.View())
	}
	return views
}

func WorkoutViews(workouts []Workout) []WorkoutView {
	views := make([]WorkoutView, 0, len(workouts))
	for _, w := range workouts {
		views = append(views, w.Serialize())
	}
	return views
}
