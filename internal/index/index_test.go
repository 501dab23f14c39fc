package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mcpar-land/quill/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "quill-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRow(path, title string, y, m, d int, tags ...string) PostRow {
	return PostRow{
		Path:      path,
		Name:      path[:len(path)-len(".md")],
		Title:     title,
		Tags:      tags,
		Year:      y,
		Month:     m,
		Day:       d,
		Checksum:  title + "-sum",
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&count); err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM post_tags`).Scan(&count); err != nil {
		t.Fatalf("post_tags table missing: %v", err)
	}
}

func TestUpsertAndCachedHTML(t *testing.T) {
	db := testDB(t)
	row := testRow("2023-04-15_hello.md", "Hello", 2023, 4, 15, "go", "test")
	if err := db.UpsertPost(row, "body", "<p>body</p>"); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}

	html, ok, err := db.CachedHTML(row.Path, row.Checksum)
	if err != nil || !ok {
		t.Fatalf("CachedHTML: ok=%v err=%v", ok, err)
	}
	if html != "<p>body</p>" {
		t.Errorf("html = %q", html)
	}

	_, ok, err = db.CachedHTML(row.Path, "stale")
	if err != nil {
		t.Fatalf("CachedHTML: %v", err)
	}
	if ok {
		t.Error("stale checksum should miss")
	}
}

func TestGetPost(t *testing.T) {
	db := testDB(t)
	row := testRow("2023-04-15_hello.md", "Hello", 2023, 4, 15, "a", "b")
	row.Description = "World"
	if err := db.UpsertPost(row, "body", ""); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}

	got, err := db.GetPost("2023-04-15_hello")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if diff := cmp.Diff(row, *got); diff != "" {
		t.Errorf("post mismatch (-want +got):\n%s", diff)
	}

	if _, err := db.GetPost("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListPosts_NewestFirst(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testRow("2021-1-1_old.md", "Old", 2021, 1, 1, "go"), "", "")
	_ = db.UpsertPost(testRow("2023-2-1_new.md", "New", 2023, 2, 1), "", "")
	_ = db.UpsertPost(testRow("2023-1-9_mid.md", "Mid", 2023, 1, 9, "go"), "", "")

	posts, total, err := db.ListPosts(0, 0, "")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	var titles []string
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	if diff := cmp.Diff([]string{"New", "Mid", "Old"}, titles); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	posts, total, err = db.ListPosts(1, 1, "go")
	if err != nil {
		t.Fatalf("ListPosts(tag): %v", err)
	}
	if total != 2 || len(posts) != 1 || posts[0].Title != "Old" {
		t.Errorf("tag page = %+v total=%d", posts, total)
	}
}

func TestTagsAndPostsByTag(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testRow("2021-1-1_a.md", "A", 2021, 1, 1, "go", "rust"), "", "")
	_ = db.UpsertPost(testRow("2022-1-1_b.md", "B", 2022, 1, 1, "go"), "", "")

	tags, err := db.Tags()
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	want := []TagCount{{Tag: "go", Count: 2}, {Tag: "rust", Count: 1}}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	names, err := db.PostsByTag("go")
	if err != nil {
		t.Fatalf("PostsByTag: %v", err)
	}
	if diff := cmp.Diff([]string{"2022-1-1_b", "2021-1-1_a"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertReplacesTags(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testRow("2020-1-1_up.md", "Old", 2020, 1, 1, "x"), "", "")
	_ = db.UpsertPost(testRow("2020-1-1_up.md", "New", 2020, 1, 1, "y"), "", "")

	if names, _ := db.PostsByTag("x"); len(names) != 0 {
		t.Error("old tag should be removed on upsert")
	}
	if names, _ := db.PostsByTag("y"); len(names) != 1 {
		t.Error("new tag should exist")
	}
}

func TestDeletePost(t *testing.T) {
	db := testDB(t)
	row := testRow("2020-1-1_del.md", "Del", 2020, 1, 1, "gone")
	_ = db.UpsertPost(row, "body", "")

	if err := db.DeletePost(row.Path); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, ok, _ := db.CachedHTML(row.Path, row.Checksum); ok {
		t.Error("deleted post still cached")
	}
	if tags, _ := db.Tags(); len(tags) != 0 {
		t.Errorf("expected no tags after delete, got %+v", tags)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testRow("2020-1-1_s.md", "Search Me", 2020, 1, 1), "uniqueword appears here", "")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "2020-1-1_s" {
		t.Errorf("search results = %+v, want 1 hit for 2020-1-1_s", results)
	}
}

func TestPrune(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testRow("2020-1-1_keep.md", "Keep", 2020, 1, 1), "", "")
	_ = db.UpsertPost(testRow("2020-1-2_drop.md", "Drop", 2020, 1, 2), "", "")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := Prune(db, map[string]struct{}{"2020-1-1_keep.md": {}}, logger)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	sums, _ := db.AllChecksums()
	if _, ok := sums["2020-1-2_drop.md"]; ok {
		t.Error("stale post not pruned")
	}
	if _, ok := sums["2020-1-1_keep.md"]; !ok {
		t.Error("live post pruned")
	}
}
