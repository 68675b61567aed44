// Package listhelper computes aggregate statistics over a list of blogs.
package listhelper

import "bloglist/internal/models"

// Favorite identifies the most liked blog.
type Favorite struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// AuthorBlogs is the author with the most blogs.
type AuthorBlogs struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

// AuthorLikes is the author whose blogs have the most likes in total.
type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// Stats bundles every aggregate. Pointer fields are nil for an empty list.
type Stats struct {
	Blogs        int          `json:"blogs"`
	TotalLikes   int          `json:"totalLikes"`
	FavoriteBlog *Favorite    `json:"favoriteBlog"`
	MostBlogs    *AuthorBlogs `json:"mostBlogs"`
	MostLikes    *AuthorLikes `json:"mostLikes"`
}

// Compute returns all aggregates for blogs.
func Compute(blogs []*models.Blog) Stats {
	return Stats{
		Blogs:        len(blogs),
		TotalLikes:   TotalLikes(blogs),
		FavoriteBlog: FavoriteBlog(blogs),
		MostBlogs:    MostBlogs(blogs),
		MostLikes:    MostLikes(blogs),
	}
}

// TotalLikes sums the likes of every blog.
func TotalLikes(blogs []*models.Blog) int {
	total := 0
	for _, b := range blogs {
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes; the earliest wins a tie.
func FavoriteBlog(blogs []*models.Blog) *Favorite {
	if len(blogs) == 0 {
		return nil
	}
	fav := blogs[0]
	for _, b := range blogs[1:] {
		if b.Likes > fav.Likes {
			fav = b
		}
	}
	return &Favorite{ID: fav.ID, Title: fav.Title, Author: fav.Author, Likes: fav.Likes}
}

// MostBlogs returns the author with the most blogs; the author seen first wins a tie.
func MostBlogs(blogs []*models.Blog) *AuthorBlogs {
	author, n, ok := best(blogs, func(*models.Blog) int { return 1 })
	if !ok {
		return nil
	}
	return &AuthorBlogs{Author: author, Blogs: n}
}

// MostLikes returns the author with the most likes; the author seen first wins a tie.
func MostLikes(blogs []*models.Blog) *AuthorLikes {
	author, n, ok := best(blogs, func(b *models.Blog) int { return b.Likes })
	if !ok {
		return nil
	}
	return &AuthorLikes{Author: author, Likes: n}
}

func best(blogs []*models.Blog, weight func(*models.Blog) int) (string, int, bool) {
	if len(blogs) == 0 {
		return "", 0, false
	}
	totals := make(map[string]int, len(blogs))
	order := make([]string, 0, len(blogs))
	for _, b := range blogs {
		if _, seen := totals[b.Author]; !seen {
			order = append(order, b.Author)
		}
		totals[b.Author] += weight(b)
	}

	bestAuthor, bestTotal := order[0], totals[order[0]]
	for _, author := range order[1:] {
		if totals[author] > bestTotal {
			bestAuthor, bestTotal = author, totals[author]
		}
	}
	return bestAuthor, bestTotal, true
}
