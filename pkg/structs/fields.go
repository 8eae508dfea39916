package structs

import (
	"github.com/oleiade/reflections"
	"github.com/pkg/errors"
)

// GetField returns the value of the provided obj field. obj can whether be a structure or pointer to structure.
// Promoted fields of embedded structures are also reachable.
func GetField(obj any, name string) (any, error) {
	v, err := reflections.GetField(obj, name)
	return v, errors.Wrap(err, "could not get field")
}

// Fields returns the names of the obj fields, including the ones of embedded structures.
func Fields(obj any) ([]string, error) {
	fields, err := reflections.FieldsDeep(obj)
	return fields, errors.Wrap(err, "could not list fields")
}

// SetField sets the provided obj field with provided value.
// obj param has to be a pointer to a struct, otherwise it will soundly fail.
// Provided value type should match with the struct field you're trying to set.
func SetField(obj any, name string, value any) error {
	return errors.Wrap(reflections.SetField(obj, name, value), "could not set field")
}
