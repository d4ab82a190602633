package usi

import (
	"errors"
	"fmt"
	"strconv"
)

// Option is a single USI-negotiable setting, grounded on the
// reference engine's uci/option.go BoolOption/IntOption pair.
type Option interface {
	Name() string
	UsiString() string
	Set(s string) error
}

type BoolOption struct {
	OptName string
	Value   *bool
}

func (o *BoolOption) Name() string { return o.OptName }

func (o *BoolOption) UsiString() string {
	return fmt.Sprintf("option name %v type check default %v", o.OptName, *o.Value)
}

func (o *BoolOption) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*o.Value = v
	return nil
}

type IntOption struct {
	OptName string
	Min     int
	Max     int
	Value   *int
}

func (o *IntOption) Name() string { return o.OptName }

func (o *IntOption) UsiString() string {
	return fmt.Sprintf("option name %v type spin default %v min %v max %v", o.OptName, *o.Value, o.Min, o.Max)
}

func (o *IntOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v < o.Min || v > o.Max {
		return errors.New("usi: option value out of range")
	}
	*o.Value = v
	return nil
}

type StringOption struct {
	OptName string
	Value   *string
}

func (o *StringOption) Name() string { return o.OptName }

func (o *StringOption) UsiString() string {
	return fmt.Sprintf("option name %v type string default %v", o.OptName, *o.Value)
}

func (o *StringOption) Set(s string) error {
	*o.Value = s
	return nil
}
