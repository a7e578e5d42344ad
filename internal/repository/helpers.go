package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

var now = func() time.Time { return time.Now().UTC() }

// toSetDocument marshals v through its bson tags so omitempty drops unset fields.
func toSetDocument(v interface{}) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
