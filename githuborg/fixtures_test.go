package githuborg_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/illmade-knight/go-async/githuborg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	expectedRepos = []string{
		"episodes.dart",
		"cpp-netlib",
		"dagger",
		"ios-webkit-debug-proxy",
		"google.github.io",
		"kratu",
		"build-debian-cloud",
		"traceur-compiler",
		"firmata.py",
	}
	apache2Repos = []string{"dagger", "kratu", "traceur-compiler", "firmata.py"}
)

// fixtureFetcher answers by URL the way the live API would, from testdata.
type fixtureFetcher struct {
	org   []byte
	repos []byte

	mu   sync.Mutex
	hits map[string]int
}

func newFixtureFetcher(t *testing.T) *fixtureFetcher {
	t.Helper()
	org, err := os.ReadFile(filepath.Join("testdata", "org.json"))
	require.NoError(t, err)
	repos, err := os.ReadFile(filepath.Join("testdata", "repos.json"))
	require.NoError(t, err)
	return &fixtureFetcher{org: org, repos: repos, hits: map[string]int{}}
}

func (f *fixtureFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.hits[url]++
	f.mu.Unlock()

	switch {
	case strings.HasSuffix(url, "/repos"):
		return f.repos, nil
	case strings.Contains(url, "/orgs/"):
		return f.org, nil
	}
	return nil, &githuborg.StatusError{URL: url, StatusCode: 404}
}

func TestIntegrationGithubOrgClient(t *testing.T) {
	t.Run("public repos", func(t *testing.T) {
		fetcher := newFixtureFetcher(t)
		client := githuborg.NewClient("google", githuborg.WithFetcher(fetcher))

		repos, err := client.PublicRepos(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, expectedRepos, repos)
	})

	t.Run("public repos with license", func(t *testing.T) {
		fetcher := newFixtureFetcher(t)
		client := githuborg.NewClient("google", githuborg.WithFetcher(fetcher))

		repos, err := client.PublicRepos(context.Background(), "apache-2.0")

		require.NoError(t, err)
		assert.Equal(t, apache2Repos, repos)
	})

	t.Run("payloads are fetched once", func(t *testing.T) {
		fetcher := newFixtureFetcher(t)
		client := githuborg.NewClient("google", githuborg.WithFetcher(fetcher))

		for _, license := range []string{"", "apache-2.0", "bsl-1.0", "mit"} {
			_, err := client.PublicRepos(context.Background(), license)
			require.NoError(t, err)
		}

		assert.Equal(t, 1, fetcher.hits[githuborg.OrgURL(githuborg.DefaultBaseURL, "google")])
		assert.Equal(t, 1, fetcher.hits["https://api.github.com/orgs/google/repos"])
	})

	t.Run("changing the returned payload leaves the client intact", func(t *testing.T) {
		fetcher := newFixtureFetcher(t)
		client := githuborg.NewClient("google", githuborg.WithFetcher(fetcher))

		payload, err := client.ReposPayload(context.Background())
		require.NoError(t, err)
		payload[0].Name = "changed"
		for i := range payload {
			if githuborg.HasLicense(payload[i], "apache-2.0") {
				payload[i].License.Key = "mit"
			}
		}

		repos, err := client.PublicRepos(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, expectedRepos, repos)
		apache, err := client.PublicRepos(context.Background(), "apache-2.0")
		require.NoError(t, err)
		assert.Equal(t, apache2Repos, apache)
	})

	t.Run("concurrent callers share one fetch", func(t *testing.T) {
		fetcher := newFixtureFetcher(t)
		client := githuborg.NewClient("google", githuborg.WithFetcher(fetcher))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				repos, err := client.PublicRepos(context.Background(), "")
				assert.NoError(t, err)
				assert.Len(t, repos, len(expectedRepos), fmt.Sprintf("caller %d", i))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, fetcher.hits["https://api.github.com/orgs/google/repos"])
	})
}
