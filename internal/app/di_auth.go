package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/iou/internal/auth/http"
	authService "github.com/allisson/iou/internal/auth/service"
	authUseCase "github.com/allisson/iou/internal/auth/usecase"
	"github.com/allisson/iou/internal/httpclient"
)

// IdentityClient returns the Keycloak client.
func (c *Container) IdentityClient() (authService.IdentityClient, error) {
	var err error
	c.identityClientInit.Do(func() {
		c.identityClient, err = c.initIdentityClient()
		if err != nil {
			c.setInitError("identityClient", err)
		}
	})
	if storedErr := c.initError("identityClient"); storedErr != nil {
		return nil, storedErr
	}
	return c.identityClient, nil
}

// ForwardAuthorization returns the forwarding authorization built on the identity client.
func (c *Container) ForwardAuthorization() (*authService.ForwardAuthorization, error) {
	var err error
	c.forwardAuthorizationInit.Do(func() {
		c.forwardAuthorization, err = c.initForwardAuthorization()
		if err != nil {
			c.setInitError("forwardAuthorization", err)
		}
	})
	if storedErr := c.initError("forwardAuthorization"); storedErr != nil {
		return nil, storedErr
	}
	return c.forwardAuthorization, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.setInitError("tokenUseCase", err)
		}
	})
	if storedErr := c.initError("tokenUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// AuthHandler returns the HTTP handler for the /auth endpoints.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.setInitError("authHandler", err)
		}
	})
	if storedErr := c.initError("authHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// AuthRateLimit returns the /auth rate limiting middleware, or nil when disabled.
func (c *Container) AuthRateLimit() gin.HandlerFunc {
	c.authRateLimitInit.Do(func() {
		if !c.config.RateLimitAuthEnabled {
			return
		}
		c.authRateLimit = authHTTP.AuthRateLimitMiddleware(
			c.ctx,
			c.config.RateLimitAuthRequestsPerSec,
			c.config.RateLimitAuthBurst,
			c.Logger(),
		)
	})
	return c.authRateLimit
}

func (c *Container) initIdentityClient() (authService.IdentityClient, error) {
	meterProvider, err := c.MeterProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get meter provider for identity client: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for identity client: %w", err)
	}

	httpClient := httpclient.New(httpclient.Options{
		Name:          "keycloak",
		MaxRetries:    c.config.KeycloakMaxRetries,
		RetryPeriod:   c.config.KeycloakRetryPeriod,
		Timeout:       c.config.UpstreamTimeout,
		HostOverride:  c.config.KeycloakHost,
		MeterProvider: meterProvider,
		Logger:        c.Logger(),
	})

	return authService.NewKeycloakClient(
		authService.KeycloakConfig{
			BaseURL:  c.config.KeycloakURL,
			Realm:    c.config.KeycloakRealm,
			ClientID: c.config.KeycloakClientID,
		},
		httpClient,
		businessMetrics,
		c.Logger(),
	), nil
}

func (c *Container) initForwardAuthorization() (*authService.ForwardAuthorization, error) {
	identity, err := c.IdentityClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity client for forward authorization: %w", err)
	}
	return authService.NewForwardAuthorization(identity), nil
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	identity, err := c.IdentityClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity client for token use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}

	useCase := authUseCase.NewTokenUseCase(identity, c.Logger())
	if !c.config.MetricsEnabled {
		return useCase, nil
	}
	return authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for auth handler: %w", err)
	}

	decoder, err := authHTTP.NewRequestDecoder(c.config.AuthRequestFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request decoder: %w", err)
	}

	return authHTTP.NewAuthHandler(tokenUseCase, decoder, c.Logger()), nil
}
