package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ClientDialer represents the dial capability of the connected device.
// The backend cannot place calls itself; it validates the tel link and
// hands it to the client, which opens the platform dialer.
type ClientDialer struct {
	allowCalls bool
}

func NewClientDialer(allowCalls bool) *ClientDialer {
	return &ClientDialer{allowCalls: allowCalls}
}

func (cd *ClientDialer) CanOpenURL(url string) bool {
	return cd.allowCalls && strings.HasPrefix(url, "tel:") && len(url) > len("tel:")
}

func (cd *ClientDialer) OpenURL(url string) error {
	if !cd.CanOpenURL(url) {
		return fmt.Errorf("cannot open URL: %s", url)
	}
	logrus.Infof("Dial request issued: %s", url)
	return nil
}
