package testsuite

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var timeType = reflect.TypeOf(time.Time{})

// GenericDBSeeder fills registered document structs from table rows and
// inserts them into the collection named by the document.
type GenericDBSeeder struct {
	Constructors map[string]func() interface{}
	DB           *mongo.Database
}

func NewGenericDBSeeder(db *mongo.Database) *GenericDBSeeder {
	return &GenericDBSeeder{
		Constructors: make(map[string]func() interface{}),
		DB:           db,
	}
}

func (gds *GenericDBSeeder) Register(name string, constructor func() interface{}) {
	gds.Constructors[name] = constructor
}

func (gds *GenericDBSeeder) Seed(document string, data *godog.Table) error {
	constructor, ok := gds.Constructors[document]
	if !ok {
		return fmt.Errorf("no constructor registered for document type: %s", document)
	}

	headers := data.Rows[0].Cells
	for i := 1; i < len(data.Rows); i++ {
		docInstance := constructor()
		val := reflect.ValueOf(docInstance).Elem()

		for j, cell := range data.Rows[i].Cells {
			fieldName := headers[j].Value
			field := fieldByName(val, fieldName)
			if !field.IsValid() || !field.CanSet() {
				return fmt.Errorf("could not set field %s for document %s", fieldName, document)
			}
			if err := setField(field, cell.Value); err != nil {
				return fmt.Errorf("field %s: %w", fieldName, err)
			}
		}

		if id := fieldByName(val, "_id"); id.IsValid() && id.Kind() == reflect.String && id.String() == "" {
			id.SetString(primitive.NewObjectID().Hex())
		}

		if _, err := gds.DB.Collection(document).InsertOne(context.Background(), docInstance); err != nil {
			return err
		}
	}
	return nil
}

// fieldByName matches the Go field name first, then the json tag.
func fieldByName(val reflect.Value, name string) reflect.Value {
	if field := val.FieldByName(toPascalCase(name)); field.IsValid() {
		return field
	}
	typ := val.Type()
	for k := 0; k < typ.NumField(); k++ {
		tag, _, _ := strings.Cut(typ.Field(k).Tag.Get("json"), ",")
		if tag == name {
			return val.Field(k)
		}
	}
	return reflect.Value{}
}

func setField(field reflect.Value, value string) error {
	if field.Type() == timeType {
		if value == "" {
			field.Set(reflect.ValueOf(time.Time{}))
			return nil
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t.UTC()))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if value == "" {
			field.SetInt(0)
			return nil
		}
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intVal)
	case reflect.Bool:
		if value == "" {
			field.SetBool(false)
			return nil
		}
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolVal)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

func toPascalCase(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
