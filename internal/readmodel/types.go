package readmodel

import "time"

type AuthorRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type TagItem struct {
	Name string `json:"name"`
	Slug string `json:"url"`
}

type PostSummary struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"url"`
	Body         string    `json:"body"`
	Image        string    `json:"image"`
	Publish      time.Time `json:"publish"`
	Category     string    `json:"category"`
	Author       AuthorRef `json:"author"`
	Tags         []TagItem `json:"tags"`
	CommentCount int       `json:"ncomments"`
}

type VideoRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	File  string `json:"file"`
}

type CommentItem struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created"`
	Children  []CommentItem `json:"children"`
}

type PostDetail struct {
	PostSummary
	BodyHTML string        `json:"body_html"`
	Video    *VideoRef     `json:"video,omitempty"`
	Comments []CommentItem `json:"comments"`
}

type CategoryItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"url"`
}

type VideoItem struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	File         string    `json:"file"`
	CreatedAt    time.Time `json:"create_at"`
	PostSlug     string    `json:"post_url"`
	PostTitle    string    `json:"post_title"`
	Author       AuthorRef `json:"author"`
	CommentCount int       `json:"ncomments"`
}

type AuthorCard struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type AuthorDetail struct {
	AuthorCard
	Rating    int           `json:"user_rating"`
	PostCount int           `json:"nposts"`
	LastPosts []PostSummary `json:"last_posts"`
}

type AboutInfo struct {
	Description  string   `json:"description"`
	EmailContact string   `json:"email_contact"`
	Phone1       string   `json:"phone1_num"`
	Phone2       string   `json:"phone2_num"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type TagCount struct {
	Name      string `json:"name"`
	Slug      string `json:"url"`
	PostCount int    `json:"npost"`
}

type MarkInfo struct {
	ID         int    `json:"id"`
	Nomination string `json:"nomination"`
	Value      int    `json:"value"`
}

type RatingInfo struct {
	ID     int      `json:"id"`
	Mark   MarkInfo `json:"mark"`
	PostID int      `json:"post_id"`
}
