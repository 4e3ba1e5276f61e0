package roster

import "fmt"

// Student is a single roster entry. RollNumber is the lookup key, but nothing
// in the type enforces its uniqueness.
type Student struct {
	Name       string `json:"name" yaml:"name"`
	RollNumber string `json:"roll_number" yaml:"roll_number"`
	Grade      string `json:"grade" yaml:"grade"`
}

// New creates a Student from the three field values.
func New(name, rollNumber, grade string) Student {
	return Student{
		Name:       name,
		RollNumber: rollNumber,
		Grade:      grade,
	}
}

// String returns the display form used by the CLI.
func (s Student) String() string {
	return fmt.Sprintf("Name: %s, Roll Number: %s, Grade: %s", s.Name, s.RollNumber, s.Grade)
}
