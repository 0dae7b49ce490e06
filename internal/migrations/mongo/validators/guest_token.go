package validators

import "go.mongodb.org/mongo-driver/bson"

var GuestTokenValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking_id", "property_id", "valid_from", "valid_until", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},
			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},
			"valid_from":  bson.M{"bsonType": "date"},
			"valid_until": bson.M{"bsonType": "date"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
