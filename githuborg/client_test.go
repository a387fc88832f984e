package githuborg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/illmade-knight/go-async/githuborg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	var body []byte
	if b, ok := args.Get(0).([]byte); ok {
		body = b
	}
	return body, args.Error(1)
}

// --- Tests ---

func TestClient_Org(t *testing.T) {
	tests := []struct {
		org  string
		want githuborg.Org
	}{
		{"google", githuborg.Org{Login: "google"}},
		{"abc", githuborg.Org{Login: "abc"}},
	}

	for _, tc := range tests {
		t.Run(tc.org, func(t *testing.T) {
			// Arrange
			fetcher := new(MockFetcher)
			url := fmt.Sprintf("https://api.github.com/orgs/%s", tc.org)
			fetcher.On("Fetch", mock.Anything, url).Return([]byte(fmt.Sprintf(`{"login": %q}`, tc.org)), nil).Once()
			client := githuborg.NewClient(tc.org, githuborg.WithFetcher(fetcher))

			// Act
			first, err := client.Org(context.Background())
			require.NoError(t, err)
			second, err := client.Org(context.Background())
			require.NoError(t, err)

			// Assert
			assert.Equal(t, tc.want, first)
			assert.Equal(t, first, second)
			fetcher.AssertExpectations(t)
			fetcher.AssertNumberOfCalls(t, "Fetch", 1)
		})
	}
}

func TestClient_OrgFailureIsNotCached(t *testing.T) {
	fetcher := new(MockFetcher)
	url := "https://api.github.com/orgs/flaky"
	fetcher.On("Fetch", mock.Anything, url).Return(nil, errors.New("connection reset")).Once()
	fetcher.On("Fetch", mock.Anything, url).Return([]byte(`{"login": "flaky"}`), nil).Once()
	client := githuborg.NewClient("flaky", githuborg.WithFetcher(fetcher))

	_, err := client.Org(context.Background())
	require.Error(t, err)

	org, err := client.Org(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "flaky", org.Login)
	fetcher.AssertExpectations(t)
}

func TestClient_PublicReposURL(t *testing.T) {
	t.Run("Returns repos_url from the org payload", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/myorg").
			Return([]byte(`{"login": "myorg", "repos_url": "https://api.github.com/orgs/myorg/repos"}`), nil).Once()
		client := githuborg.NewClient("myorg", githuborg.WithFetcher(fetcher))

		url, err := client.PublicReposURL(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com/orgs/myorg/repos", url)
	})

	t.Run("Missing repos_url", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/myorg").Return([]byte(`{"login": "myorg"}`), nil)
		client := githuborg.NewClient("myorg", githuborg.WithFetcher(fetcher))

		_, err := client.PublicReposURL(context.Background())

		assert.ErrorIs(t, err, githuborg.ErrNoReposURL)
	})

	t.Run("Custom base URL", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, "https://ghe.example.com/api/v3/orgs/myorg").
			Return([]byte(`{"login": "myorg", "repos_url": "https://ghe.example.com/api/v3/orgs/myorg/repos"}`), nil).Once()
		client := githuborg.NewClient("myorg",
			githuborg.WithFetcher(fetcher),
			githuborg.WithBaseURL("https://ghe.example.com/api/v3/"))

		url, err := client.PublicReposURL(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "https://ghe.example.com/api/v3/orgs/myorg/repos", url)
		fetcher.AssertExpectations(t)
	})
}

func TestClient_PublicRepos(t *testing.T) {
	// Arrange
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/myorg").
		Return([]byte(`{"login": "myorg", "repos_url": "https://api.github.com/orgs/myorg/repos"}`), nil).Once()
	fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/myorg/repos").
		Return([]byte(`[{"name": "repo1"}, {"name": "repo2"}, {"name": "repo3"}]`), nil).Once()
	client := githuborg.NewClient("myorg", githuborg.WithFetcher(fetcher))

	// Act
	result, err := client.PublicRepos(context.Background(), "")
	require.NoError(t, err)
	again, err := client.PublicRepos(context.Background(), "")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{"repo1", "repo2", "repo3"}, result)
	assert.Equal(t, result, again)
	fetcher.AssertExpectations(t)
	fetcher.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestClient_PublicReposErrors(t *testing.T) {
	t.Run("Repos fetch fails", func(t *testing.T) {
		fetchErr := &githuborg.StatusError{URL: "https://api.github.com/orgs/myorg/repos", StatusCode: 500}
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/myorg").
			Return([]byte(`{"login": "myorg", "repos_url": "https://api.github.com/orgs/myorg/repos"}`), nil)
		fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/myorg/repos").Return(nil, fetchErr)
		client := githuborg.NewClient("myorg", githuborg.WithFetcher(fetcher))

		_, err := client.PublicRepos(context.Background(), "")

		var statusErr *githuborg.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 500, statusErr.StatusCode)
	})

	t.Run("Malformed payload", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/myorg").Return([]byte(`not json`), nil)
		client := githuborg.NewClient("myorg", githuborg.WithFetcher(fetcher))

		_, err := client.PublicRepos(context.Background(), "")

		assert.Error(t, err)
	})

	t.Run("Empty organization", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/empty").
			Return([]byte(`{"login": "empty", "repos_url": "https://api.github.com/orgs/empty/repos"}`), nil)
		fetcher.On("Fetch", mock.Anything, "https://api.github.com/orgs/empty/repos").Return([]byte(`[]`), nil).Once()
		client := githuborg.NewClient("empty", githuborg.WithFetcher(fetcher))

		names, err := client.PublicRepos(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, names)

		_, err = client.PublicRepos(context.Background(), "mit")
		require.NoError(t, err)
		fetcher.AssertExpectations(t)
	})
}

func TestHasLicense(t *testing.T) {
	tests := []struct {
		name       string
		repo       githuborg.Repo
		licenseKey string
		expected   bool
	}{
		{"matching key", githuborg.Repo{License: &githuborg.License{Key: "my_license"}}, "my_license", true},
		{"other key", githuborg.Repo{License: &githuborg.License{Key: "other_license"}}, "my_license", false},
		{"no license", githuborg.Repo{}, "my_license", false},
		{"empty key", githuborg.Repo{License: &githuborg.License{Key: ""}}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, githuborg.HasLicense(tc.repo, tc.licenseKey))
		})
	}
}
