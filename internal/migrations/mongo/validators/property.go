package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "owner_ids", "policy", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"owner_ids": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items":    bson.M{"bsonType": "string"},
			},
			"manager_ids": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
			"policy": bson.M{
				"bsonType": "object",
				"required": []string{"mode"},
				"properties": bson.M{
					"mode":               bson.M{"enum": []string{"fairness", "first_come"}},
					"maintenance_exempt": bson.M{"bsonType": "bool"},
				},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
