package app

import (
	"fmt"

	engineService "github.com/allisson/iou/internal/engine/service"
	"github.com/allisson/iou/internal/httpclient"
	iouHTTP "github.com/allisson/iou/internal/iou/http"
	iouUseCase "github.com/allisson/iou/internal/iou/usecase"
	"github.com/allisson/iou/internal/stream"
)

// EngineClient returns the protocol engine client.
func (c *Container) EngineClient() (engineService.EngineClient, error) {
	var err error
	c.engineClientInit.Do(func() {
		c.engineClient, err = c.initEngineClient()
		if err != nil {
			c.setInitError("engineClient", err)
		}
	})
	if storedErr := c.initError("engineClient"); storedErr != nil {
		return nil, storedErr
	}
	return c.engineClient, nil
}

// IouUseCase returns the IOU use case.
func (c *Container) IouUseCase() (iouUseCase.IouUseCase, error) {
	var err error
	c.iouUseCaseInit.Do(func() {
		c.iouUseCase, err = c.initIouUseCase()
		if err != nil {
			c.setInitError("iouUseCase", err)
		}
	})
	if storedErr := c.initError("iouUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.iouUseCase, nil
}

// IouHandler returns the HTTP handler for the /iou endpoints.
func (c *Container) IouHandler() (*iouHTTP.IouHandler, error) {
	var err error
	c.iouHandlerInit.Do(func() {
		c.iouHandler, err = c.initIouHandler()
		if err != nil {
			c.setInitError("iouHandler", err)
		}
	})
	if storedErr := c.initError("iouHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.iouHandler, nil
}

// Relay returns the SSE relay with the IOU event consumers.
func (c *Container) Relay() (*stream.Relay, error) {
	var err error
	c.relayInit.Do(func() {
		c.relay, err = c.initRelay()
		if err != nil {
			c.setInitError("relay", err)
		}
	})
	if storedErr := c.initError("relay"); storedErr != nil {
		return nil, storedErr
	}
	return c.relay, nil
}

func (c *Container) initEngineClient() (engineService.EngineClient, error) {
	meterProvider, err := c.MeterProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get meter provider for engine client: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for engine client: %w", err)
	}

	api := httpclient.New(httpclient.Options{
		Name:          "engine",
		MaxRetries:    c.config.EngineMaxRetries,
		RetryPeriod:   c.config.EngineRetryPeriod,
		Timeout:       c.config.UpstreamTimeout,
		MeterProvider: meterProvider,
		Logger:        c.Logger(),
	})

	// Reconnection of the notification stream is owned by the relay.
	notifications := httpclient.New(httpclient.Options{
		Name:          "engine-stream",
		MaxRetries:    0,
		MeterProvider: meterProvider,
		Logger:        c.Logger(),
	})

	return engineService.NewHTTPEngineClient(
		c.config.EngineURL,
		api,
		notifications,
		businessMetrics,
		c.Logger(),
	), nil
}

func (c *Container) initIouUseCase() (iouUseCase.IouUseCase, error) {
	engine, err := c.EngineClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get engine client for iou use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for iou use case: %w", err)
	}

	useCase := iouUseCase.NewIouUseCase(engine, c.Logger())
	if !c.config.MetricsEnabled {
		return useCase, nil
	}
	return iouUseCase.NewIouUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initIouHandler() (*iouHTTP.IouHandler, error) {
	useCase, err := c.IouUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get iou use case for iou handler: %w", err)
	}

	forward, err := c.ForwardAuthorization()
	if err != nil {
		return nil, fmt.Errorf("failed to get forward authorization for iou handler: %w", err)
	}

	return iouHTTP.NewIouHandler(useCase, forward, c.Logger()), nil
}

func (c *Container) initRelay() (*stream.Relay, error) {
	engine, err := c.EngineClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get engine client for sse relay: %w", err)
	}

	forward, err := c.ForwardAuthorization()
	if err != nil {
		return nil, fmt.Errorf("failed to get forward authorization for sse relay: %w", err)
	}

	useCase, err := c.IouUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get iou use case for sse relay: %w", err)
	}

	consumers := []stream.Consumer{
		iouUseCase.NewIouCompleteConsumer(useCase, c.Logger()),
		iouUseCase.NewPaymentConsumer(useCase, c.Logger()),
	}

	return stream.NewRelay(
		engine,
		forward,
		consumers,
		stream.Config{
			MaxReconnections:   c.config.ReadStreamsMaxReconnections,
			ReconnectionPeriod: c.config.ReadStreamsReconnectionPeriod,
		},
		c.Logger(),
	), nil
}
