//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wheelio/car-rental-api/internal/application"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
	couponDomain "github.com/wheelio/car-rental-api/internal/domain/coupon"
	"github.com/wheelio/car-rental-api/internal/events"
	"github.com/wheelio/car-rental-api/internal/jobs"
	"github.com/wheelio/car-rental-api/internal/pkg/kafka"
	"github.com/wheelio/car-rental-api/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up booking components backed by real containers.
type rentalStack struct {
	Bookings        *application.BookingService
	BookingRepo     *repository.GormBookingRepository
	CarRepo         *repository.GormCarRepository
	CouponRepo      *repository.GormCouponRepository
	Reaper          *jobs.Reaper
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(repository.AllModels()...))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicBookingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRentalStack wires up the booking service and reaper against the containers.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	carRepo := repository.NewGormCarRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	producer := kafka.NewProducer(brokers, logger)
	publisher := events.NewPublisher(producer, logger)

	bookingSvc := application.NewBookingService(bookingRepo, carRepo, couponRepo, paymentRepo, publisher, logger)
	reaper := jobs.NewReaper(bookingRepo, publisher, "@every 1m", 10*time.Minute, logger)

	return &rentalStack{
		Bookings:        bookingSvc,
		BookingRepo:     bookingRepo,
		CarRepo:         carRepo,
		CouponRepo:      couponRepo,
		Reaper:          reaper,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedCoupon inserts an active flat-discount coupon with the given usage limit.
func seedCoupon(t *testing.T, couponRepo *repository.GormCouponRepository, code string, usageLimit int) *couponDomain.Coupon {
	t.Helper()
	now := time.Now().UTC()
	c, err := couponDomain.New(code, "integration", couponDomain.DiscountFixed, 200, 0, 0,
		now.Add(-time.Hour), now.Add(24*time.Hour), usageLimit, nil)
	require.NoError(t, err)
	require.NoError(t, couponRepo.Create(context.Background(), c))
	return c
}

// seedCar inserts an available car and returns it.
func seedCar(t *testing.T, carRepo *repository.GormCarRepository, pricePerDay int64) *carDomain.Car {
	t.Helper()
	c, err := carDomain.New("Maruti", "Swift", 2023, "hatchback", "manual", "petrol", 5, pricePerDay, "Pune", "", "")
	require.NoError(t, err)
	require.NoError(t, carRepo.Create(context.Background(), c))
	return c
}

// seedStalePendingBooking inserts a pending booking created before the reaper cutoff.
func seedStalePendingBooking(t *testing.T, db *gorm.DB, carID uuid.UUID, age time.Duration) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	created := now.Add(-age)

	model := repository.BookingModel{
		ID:             uuid.New(),
		BookingNumber:  fmt.Sprintf("CR-INT%s", uuid.New().String()[:4]),
		UserID:         uuid.New(),
		CarID:          carID,
		PickupAt:       now.Add(24 * time.Hour),
		DropAt:         now.Add(48 * time.Hour),
		TotalDays:      1,
		OriginalAmount: 1800,
		TotalAmount:    1800,
		PaymentMethod:  "card",
		PaymentStatus:  "pending",
		Status:         "pending",
		Version:        1,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
	return model.ID
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger, _ := zap.NewDevelopment()
	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	consumer := kafka.NewConsumer(brokers, groupID, topic, logger)
	defer func() { _ = consumer.Close() }()

	found := make(chan kafka.CloudEvent, 1)
	go func() {
		_ = consumer.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
			ce, err := kafka.ParseCloudEvent(msg.Value)
			if err != nil {
				return nil
			}
			if ce.Type == expectedType {
				select {
				case found <- *ce:
				default:
				}
			}
			return nil
		})
	}()

	select {
	case ce := <-found:
		return ce
	case <-ctx.Done():
		t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
		return kafka.CloudEvent{}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
