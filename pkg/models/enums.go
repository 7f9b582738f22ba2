package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marshallshelly/costume-shop/pkg/runtime"
)

// Category is the audience a costume is made for.
type Category string

const (
	CategoryAdult Category = "adult"
	CategoryChild Category = "child"
	CategoryBaby  Category = "baby"
	CategoryPet   Category = "pet"
)

// Categories lists every valid Category.
var Categories = []Category{CategoryAdult, CategoryChild, CategoryBaby, CategoryPet}

// Gender is the cut of a costume.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// Genders lists every valid Gender.
var Genders = []Gender{GenderMale, GenderFemale, GenderUnisex}

// Status is an order's fulfilment state. Any status may follow any other.
type Status string

const (
	StatusPending             Status = "pending"
	StatusAwaitingFulfillment Status = "awaiting fulfillment"
	StatusAwaitingShipment    Status = "awaiting shipment"
	StatusShipped             Status = "shipped"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
	StatusRefunded            Status = "refunded"
)

// Statuses lists every valid Status.
var Statuses = []Status{
	StatusPending,
	StatusAwaitingFulfillment,
	StatusAwaitingShipment,
	StatusShipped,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
}

func (c Category) Valid() bool { return contains(Categories, c) }
func (g Gender) Valid() bool   { return contains(Genders, g) }
func (s Status) Valid() bool   { return contains(Statuses, s) }

// ParseCategory returns the Category named by s.
func ParseCategory(s string) (Category, error) { return parse(Categories, "category", s) }

// ParseGender returns the Gender named by s.
func ParseGender(s string) (Gender, error) { return parse(Genders, "gender", s) }

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, error) { return parse(Statuses, "status", s) }

func (c *Category) UnmarshalJSON(data []byte) error { return unmarshal(data, c, ParseCategory) }
func (g *Gender) UnmarshalJSON(data []byte) error   { return unmarshal(data, g, ParseGender) }
func (s *Status) UnmarshalJSON(data []byte) error   { return unmarshal(data, s, ParseStatus) }

func contains[T ~string](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func parse[T ~string](set []T, name, s string) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(s)))
	if !contains(set, v) {
		return "", &runtime.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("invalid %s %q: must be one of %s", name, s, join(set)),
		}
	}
	return v, nil
}

func unmarshal[T ~string](data []byte, dst *T, parseFn func(string) (T, error)) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parseFn(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func join[T ~string](set []T) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
