package session

import "errors"

var ErrOutOfOrder = errors.New("step id out of order")
var ErrBelowThreshold = errors.New("wait below timeout threshold")
