package models

// OwnerView is the owner projection embedded in a blog response.
type OwnerView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// BlogView is the public JSON shape of a blog.
type BlogView struct {
	ID       uint       `json:"id"`
	Title    string     `json:"title"`
	Author   string     `json:"author"`
	URL      string     `json:"url"`
	Likes    int        `json:"likes"`
	User     *OwnerView `json:"user"`
	Comments []string   `json:"comments"`
}

// BlogSummaryView is the blog projection embedded in a user response.
type BlogSummaryView struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// UserView is the public JSON shape of a user.
type UserView struct {
	ID       uint              `json:"id"`
	Username string            `json:"username"`
	Name     string            `json:"name"`
	Blogs    []BlogSummaryView `json:"blogs"`
}

// LoginView is returned by a successful login.
type LoginView struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
	ID       uint   `json:"id"`
}

// NewBlogView projects a blog with its owner and comments loaded.
func NewBlogView(b *Blog) BlogView {
	v := BlogView{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		URL:      b.URL,
		Likes:    b.Likes,
		Comments: make([]string, 0, len(b.Comments)),
	}
	if b.User.ID != 0 {
		v.User = &OwnerView{ID: b.User.ID, Username: b.User.Username, Name: b.User.Name}
	}
	for _, c := range b.Comments {
		v.Comments = append(v.Comments, c.Content)
	}
	return v
}

// NewBlogViews projects a slice of blogs, never returning nil.
func NewBlogViews(blogs []*Blog) []BlogView {
	out := make([]BlogView, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, NewBlogView(b))
	}
	return out
}

// NewUserView projects a user with owned blogs reduced to summaries.
func NewUserView(u *User) UserView {
	v := UserView{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Blogs:    make([]BlogSummaryView, 0, len(u.Blogs)),
	}
	for _, b := range u.Blogs {
		v.Blogs = append(v.Blogs, BlogSummaryView{ID: b.ID, Title: b.Title, Author: b.Author, URL: b.URL})
	}
	return v
}

// NewUserViews projects a slice of users, never returning nil.
func NewUserViews(users []*User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserView(u))
	}
	return out
}
