package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Post snapshots the author's name and avatar at creation time so later
// profile edits do not rewrite historical posts.
type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User     primitive.ObjectID `bson:"user" json:"user"`
	Name     string             `bson:"name" json:"name"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	Text     string             `bson:"text" json:"text"`
	Likes    []Like             `bson:"likes" json:"likes"`
	Comments []Comment          `bson:"comments" json:"comments"`
	Date     int64              `bson:"date" json:"date"`
}

type Like struct {
	User primitive.ObjectID `bson:"user" json:"user"`
}

type Comment struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	User   primitive.ObjectID `bson:"user" json:"user"`
	Name   string             `bson:"name" json:"name"`
	Avatar string             `bson:"avatar" json:"avatar"`
	Text   string             `bson:"text" json:"text"`
	Date   int64              `bson:"date" json:"date"`
}

// LikedBy reports whether userID is in the likes list.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}
