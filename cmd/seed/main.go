package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"

	"postboard/cmd/app"
	"postboard/internal/config"
	"postboard/internal/models"
	"postboard/internal/repository"
)

var users = []struct {
	email    string
	name     string
	password string
	avatar   string
}{
	{"alice@example.com", "Alice", "alice-password", "https://www.gravatar.com/avatar/alice?d=mm"},
	{"bob@example.com", "Bob", "bob-password", "https://www.gravatar.com/avatar/bob?d=mm"},
	{"carol@example.com", "Carol", "carol-password", ""},
}

var posts = []string{
	"Hello from the seed script.",
	"Anyone else up this early?",
	"Shipping on a Friday, wish me luck.",
}

func main() {
	avatarDir := flag.String("avatars", "", "directory with <name>.png avatars to upload to MinIO")
	withPosts := flag.Bool("posts", true, "create a sample post for every seeded user")
	flag.Parse()

	cfg := config.LoadConfig()
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Fatalf("seeding the in-memory store has no effect, set STORE_DRIVER=postgres")
	}
	if cfg.JWTSecretKey == "" {
		cfg.JWTSecretKey = "seed"
	}

	application := app.New(cfg, app.NewLogger())
	defer application.Close()

	ctx := context.Background()

	for i, u := range users {
		user := &models.User{Email: u.email, Name: u.name, Avatar: u.avatar}

		if *avatarDir != "" && application.Storage != nil {
			if ref, err := uploadAvatar(ctx, application, *avatarDir, u.name); err != nil {
				log.Printf("skipping avatar for %s: %v", u.email, err)
			} else {
				user.Avatar = ref
			}
		}

		err := application.Repo.User.CreateUser(ctx, user, u.password)
		if errors.Is(err, repository.ErrDuplicateEmail) {
			log.Printf("user %s already exists", u.email)
			continue
		}
		if err != nil {
			log.Fatalf("failed to create user %s: %v", u.email, err)
		}
		log.Printf("created user %s (%s)", u.email, user.UserID)

		if *withPosts {
			post, err := application.Services.Post.CreatePost(ctx, user.UserID, posts[i%len(posts)])
			if err != nil {
				log.Fatalf("failed to create post for %s: %v", u.email, err)
			}
			log.Printf("created post %s", post.PostID)
		}
	}
}

func uploadAvatar(ctx context.Context, a *app.App, dir, name string) (string, error) {
	path := filepath.Join(dir, name+".png")

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	return a.Storage.UploadAvatar(ctx, name, filepath.Base(path), f, info.Size())
}
