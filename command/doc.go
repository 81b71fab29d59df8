// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package command drives a panel from text commands.
//
// A Dispatcher runs one command at a time. The same Dispatcher can be shared
// by a TCP server and an interactive prompt; commands from different clients
// never interleave on the panel.
//
// Commands:
//
//	init [fast]            initialize the controller
//	clear [white|black]    fill the panel
//	text <msg>             full refresh with msg
//	fast <msg>             fast refresh with msg
//	base <msg>             write msg as the base for partial refreshes
//	partial <msg>          partial refresh with msg
//	sleep                  enter deep sleep
//	help                   list commands
package command
