package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload stores metadata about a media file a user uploaded.
// The actual file resides in object storage.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	ObjectKey   string             `bson:"objectKey" json:"-"`        // Key in the bucket, internal use
	FileName    string             `bson:"fileName" json:"fileName"` // Original filename provided by the client
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	URL         string             `bson:"url" json:"url"` // Permanent public URL
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
