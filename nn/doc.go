// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn builds dense feed-forward networks and the losses they are
// trained against.
//
// # Overview
//
// A Network is an ordered list of layers whose widths are fixed at
// construction. Dense layers compute act(x·W + b); Dropout layers zero
// inputs at random during training and are the identity at inference.
//
// # Building
//
// The Builder asks only for each layer's output width, so a chain with
// mismatched widths cannot be written:
//
//	net, err := nn.NewBuilder(784).
//	    Dense(300, nn.Tanh()).
//	    Dropout(0.5).
//	    Dense(100, nn.ReLU()).
//	    Dense(10, nn.Identity()).
//	    Build(nn.DefaultInit(42))
//
// NewNetwork accepts the same description as a []LayerConfig and checks
// every width once.
//
// # Forward and backward
//
// Forward returns a Pass. Its Backward may be called once, and only while
// it is the network's most recent pass; gradients are added to each
// parameter's accumulator until an optimizer applies and clears them:
//
//	pass, err := net.Forward(x, nn.Training)
//	loss := nn.NewSoftmaxCrossEntropyLoss()
//	grad, err := loss.Backward(pass.Output(), y)
//	_, err = pass.Backward(grad)
//
// Predict runs an inference pass without touching the pending one.
package nn
