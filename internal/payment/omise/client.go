package omisecli

import "github.com/omise/omise-go"

func NewOmiseClient(pub, sec string) (*omise.Client, error) {
	c, err := omise.NewClient(pub, sec)
	if err != nil {
		return nil, err
	}
	c.SetDebug(false)
	return c, nil
}
