package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"safetrail/models"
)

// FCMPushService delivers push notifications through Firebase Cloud
// Messaging. It implements interfaces.PushNotifier. Push delivery is
// best effort everywhere; a nil client degrades to recorded failures.
type FCMPushService struct {
	fcmClient *messaging.Client
}

func NewFCMPushService(credentialsFile string) (*FCMPushService, error) {
	if credentialsFile == "" {
		logrus.Warn("Firebase not configured, push notifications disabled")
		return &FCMPushService{}, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}

	fcmClient, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
	}

	return &FCMPushService{fcmClient: fcmClient}, nil
}

func (ps *FCMPushService) SendPush(ctx context.Context, deviceToken, title, body string, data map[string]string) (*models.SendResult, error) {
	if ps.fcmClient == nil {
		err := fmt.Errorf("push notifications not configured")
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}
	if deviceToken == "" {
		err := fmt.Errorf("no device token registered")
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	message := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
				Icon:  "ic_notification",
				Color: "#D32F2F",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := ps.fcmClient.Send(ctx, message)
	if err != nil {
		logrus.Errorf("Failed to send push notification: %v", err)
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	return &models.SendResult{Success: true, MessageID: response}, nil
}
