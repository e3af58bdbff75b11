package models

// Article is a wellness article shown on the articles page.
type Article struct {
	ArticleID    string `bson:"article_id" json:"article_id"`
	Title        string `bson:"title" json:"title"`
	ArticleLink  string `bson:"article_link" json:"article_link"`
	Img          string `bson:"img,omitempty" json:"img"`
	ArticleIntro string `bson:"article_intro,omitempty" json:"article_intro"`
}
