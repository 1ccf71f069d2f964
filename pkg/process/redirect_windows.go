package process

import (
	"golang.org/x/sys/windows"
)

var stdHandleIDs = map[Stream]uint32{
	StreamIn:  windows.STD_INPUT_HANDLE,
	StreamOut: windows.STD_OUTPUT_HANDLE,
	StreamErr: windows.STD_ERROR_HANDLE,
}

func redirectInherit(stream Stream) (Handle, error) {
	std, err := windows.GetStdHandle(stdHandleIDs[stream])
	if err != nil || std == windows.InvalidHandle {
		return Invalid, errPipe("parent stream is not open")
	}

	current := windows.CurrentProcess()
	var dup windows.Handle
	err = windows.DuplicateHandle(current, std, current, &dup, 0, false,
		windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return Invalid, systemError(err)
	}

	return Handle(dup), nil
}

func redirectDiscard(Stream) (Handle, error) {
	name, err := windows.UTF16PtrFromString("NUL")
	if err != nil {
		return Invalid, systemError(err)
	}

	h, err := windows.CreateFile(name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil,
		windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return Invalid, systemError(err)
	}

	return Handle(h), nil
}
