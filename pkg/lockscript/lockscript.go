// Package lockscript is the entry point (spec §2 "control flow", C5/C6
// orchestration): it loads the currently executing script, delegates to
// pkg/digest to build the signed message, then to pkg/sigverify to
// recover and check the identity, returning the single §7 result code
// the whole invocation boils down to.
package lockscript

import (
	"github.com/ckb-ecofund/open-transaction-lock/pkg/chunkload"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/digest"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/hostvm"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/sigverify"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/wirefmt"
)

// scriptBufferSize is the stack buffer reserved for the currently
// executing script (spec §5, §4.7 step 6).
const scriptBufferSize = 32 * 1024

// Verify runs the complete lock script against loader and returns the
// result code that would be the script's process exit code (spec §6:
// "Exit code 0 on success; nonzero codes defined in §7"). A non-zero
// return aborts the containing transaction; Verify never panics on
// malformed input — every failure path is an explicit result code.
func Verify(loader hostvm.Loader) resultcode.Code {
	result, code := digest.Build(loader)
	if code != resultcode.OK {
		return code
	}

	args, code := loadScriptArgs(loader)
	if code != resultcode.OK {
		return code
	}

	return sigverify.Verify(result.Signature, result.Message, args)
}

func loadScriptArgs(loader hostvm.Loader) ([]byte, resultcode.Code) {
	raw, tooLong, code := chunkload.ReadFull(func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
		return loader.LoadScript(buf, offset)
	}, scriptBufferSize)
	if code != hostvm.OK {
		return nil, resultcode.Syscall
	}
	if tooLong {
		return nil, resultcode.ScriptTooLong
	}

	view, err := wirefmt.VerifyScript(raw)
	if err != nil {
		return nil, resultcode.Encoding
	}
	args, err := view.Args()
	if err != nil {
		return nil, resultcode.Encoding
	}
	return args, resultcode.OK
}
